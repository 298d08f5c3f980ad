package session

import (
	"errors"
	"fmt"
	"time"

	"khidmat-api/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload. The token only names the session
// and the principal; role, status and zone are always read fresh from the
// store so a stale token can never grant stale authority.
type Claims struct {
	SessionID string `json:"sid"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// Validate performs additional validation on custom claims
func (c *Claims) Validate() error {
	if c.SessionID == "" || c.Subject == "" {
		return jwt.ErrTokenInvalidClaims
	}
	if c.Kind != string(domain.IdentityStaff) && c.Kind != string(domain.IdentityCommunity) {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

// TokenCodec mints and validates HS256 session tokens
type TokenCodec struct {
	secret    []byte
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
}

// NewTokenCodec creates a codec. The secret must be at least 256 bits;
// config validation enforces that before we get here.
func NewTokenCodec(secret []byte, issuer string, ttl, clockSkew time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:    secret,
		issuer:    issuer,
		ttl:       ttl,
		clockSkew: clockSkew,
	}
}

// Mint issues a signed token binding a session id to a principal
func (c *TokenCodec) Mint(sessionID string, kind domain.IdentityKind, principalID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		Kind:      string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ErrInvalidToken covers every way a presented token can fail validation.
// Callers map it to the Unauthenticated identity, never to a 5xx.
var ErrInvalidToken = errors.New("invalid session token")

// Parse validates a token string and returns its claims
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithLeeway(c.clockSkew),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}
