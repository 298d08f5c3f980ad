package service

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"
	"khidmat-api/internal/session"

	"go.uber.org/zap"
)

// ErrInvalidCredentials covers every failed login shape. Deliberately one
// error: callers must not learn whether the principal exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// StaffReader loads staff for login, satisfied by *repo.StaffRepository
type StaffReader interface {
	GetStaff(ctx context.Context, staffID string) (*domain.Staff, error)
}

// ProfileICReader looks up community profiles by IC number, satisfied by
// *repo.ProfileRepository
type ProfileICReader interface {
	GetProfileByIC(ctx context.Context, icNumber string) (*domain.Profile, error)
}

// LoginResult is a minted session with its resolved identity
type LoginResult struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

// AuthService mints and revokes sessions. Credential verification proper
// happens at the identity-provider boundary in front of this API; login
// here binds an already-asserted principal to a live session.
type AuthService struct {
	codec    *session.TokenCodec
	sessions session.Store
	staff    StaffReader
	profiles ProfileICReader
	audit    AuditLogger
	log      *logger.Logger
}

func NewAuthService(codec *session.TokenCodec, sessions session.Store, staff StaffReader, profiles ProfileICReader, audit AuditLogger, log *logger.Logger) *AuthService {
	return &AuthService{
		codec:    codec,
		sessions: sessions,
		staff:    staff,
		profiles: profiles,
		audit:    audit,
		log:      log,
	}
}

// LoginStaff mints a staff session. Inactive staff cannot log in.
func (s *AuthService) LoginStaff(ctx context.Context, staffID string) (*LoginResult, error) {
	staff, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, repo.ErrStaffNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, authz.Unavailable("staff store", err)
	}
	if staff.Status != domain.StaffStatusActive {
		return nil, ErrInvalidCredentials
	}

	return s.mintSession(ctx, staff.Identity())
}

// LoginCommunity mints a community session from an IC-number lookup.
// Pending and rejected profiles still get sessions; verification status
// limits what they can do, not whether they can sign in.
func (s *AuthService) LoginCommunity(ctx context.Context, icNumber string) (*LoginResult, error) {
	profile, err := s.profiles.GetProfileByIC(ctx, icNumber)
	if err != nil {
		if errors.Is(err, repo.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, authz.Unavailable("profile store", err)
	}

	return s.mintSession(ctx, profile.Identity())
}

func (s *AuthService) mintSession(ctx context.Context, identity domain.Identity) (*LoginResult, error) {
	principalID := identity.PrincipalID()

	record, err := s.sessions.Create(ctx, identity.Kind, principalID)
	if err != nil {
		return nil, authz.Unavailable("session store", err)
	}

	token, err := s.codec.Mint(record.SessionID, identity.Kind, principalID)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	s.log.Info(ctx, "session created",
		logger.Module("auth"),
		logger.Action("login"),
		zap.String("kind", string(identity.Kind)),
		zap.String("principal_id", principalID),
	)

	auditErr := s.audit.LogAction(ctx, principalID, string(identity.Kind),
		"login", "session", &record.SessionID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("auth"),
			logger.Action("login"),
			zap.Error(auditErr),
		)
	}

	return &LoginResult{Token: token, Identity: identity}, nil
}

// Logout revokes the session named by the token. Invalid tokens are a
// no-op success: the caller's goal, not holding a live session, is met.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return authz.Unavailable("session store", err)
	}

	s.log.Info(ctx, "session revoked",
		logger.Module("auth"),
		logger.Action("logout"),
		zap.String("session_id", claims.SessionID),
	)

	return nil
}
