package session

import (
	"errors"
	"testing"
	"time"

	"khidmat-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testCodec() *TokenCodec {
	return NewTokenCodec(testSecret, "khidmat-api", time.Hour, time.Minute)
}

func TestTokenCodec_MintAndParse(t *testing.T) {
	codec := testCodec()

	token, err := codec.Mint("sess-1", domain.IdentityStaff, "staff-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, string(domain.IdentityStaff), claims.Kind)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, "khidmat-api", claims.Issuer)
}

func TestTokenCodec_Parse_WrongSecret(t *testing.T) {
	codec := testCodec()
	other := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), "khidmat-api", time.Hour, time.Minute)

	token, err := codec.Mint("sess-1", domain.IdentityCommunity, "profile-1")
	require.NoError(t, err)

	_, err = other.Parse(token)

	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenCodec_Parse_Expired(t *testing.T) {
	// Negative TTL mints an already-expired token; zero skew so leeway
	// cannot rescue it.
	codec := NewTokenCodec(testSecret, "khidmat-api", -time.Hour, 0)

	token, err := codec.Mint("sess-1", domain.IdentityStaff, "staff-1")
	require.NoError(t, err)

	_, err = codec.Parse(token)

	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenCodec_Parse_ExpiredWithinSkew(t *testing.T) {
	codec := NewTokenCodec(testSecret, "khidmat-api", -time.Second, time.Minute)

	token, err := codec.Mint("sess-1", domain.IdentityStaff, "staff-1")
	require.NoError(t, err)

	_, err = codec.Parse(token)

	assert.NoError(t, err, "clock skew leeway should admit a just-expired token")
}

func TestTokenCodec_Parse_WrongIssuer(t *testing.T) {
	codec := testCodec()
	other := NewTokenCodec(testSecret, "some-other-service", time.Hour, time.Minute)

	token, err := other.Mint("sess-1", domain.IdentityStaff, "staff-1")
	require.NoError(t, err)

	_, err = codec.Parse(token)

	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenCodec_Parse_Garbage(t *testing.T) {
	codec := testCodec()

	_, err := codec.Parse("not.a.token")

	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestClaims_Validate_RejectsUnknownKind(t *testing.T) {
	claims := &Claims{SessionID: "sess-1", Kind: "service"}
	claims.Subject = "svc-1"

	assert.Error(t, claims.Validate())
}
