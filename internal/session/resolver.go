package session

import (
	"context"
	"errors"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"go.uber.org/zap"
)

// StaffLoader reads a staff record by id. Satisfied by repo.StaffRepository.
type StaffLoader interface {
	GetStaff(ctx context.Context, staffID string) (*domain.Staff, error)
}

// ProfileLoader reads a community profile by id. Satisfied by
// repo.ProfileRepository.
type ProfileLoader interface {
	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
}

// Resolver turns a bearer token into an Identity. One resolution
// algorithm, two entry points: Resolve may refresh session state,
// ResolveReadOnly never writes. Both return identical decisions for
// identical underlying state.
type Resolver struct {
	codec    *TokenCodec
	store    Store
	staff    StaffLoader
	profiles ProfileLoader
	log      *logger.Logger
}

// NewResolver creates a session resolver
func NewResolver(codec *TokenCodec, store Store, staff StaffLoader, profiles ProfileLoader, log *logger.Logger) *Resolver {
	return &Resolver{
		codec:    codec,
		store:    store,
		staff:    staff,
		profiles: profiles,
		log:      log,
	}
}

// Resolve is the mutating variant: it slides the session idle window.
// Call it from mutation-handling paths that can persist side effects.
func (r *Resolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	return r.resolve(ctx, token, true)
}

// ResolveReadOnly resolves without any session-store writes. Safe for
// render-only paths that must not mutate session state.
func (r *Resolver) ResolveReadOnly(ctx context.Context, token string) (domain.Identity, error) {
	return r.resolve(ctx, token, false)
}

// resolve is the single underlying algorithm, parameterized by whether
// refresh side effects are allowed. An invalid credential is a normal
// outcome (Unauthenticated identity, nil error); only store failures
// return an error, always typed Unavailable.
func (r *Resolver) resolve(ctx context.Context, token string, allowSideEffects bool) (domain.Identity, error) {
	if token == "" {
		return domain.Unauthenticated(), nil
	}

	claims, err := r.codec.Parse(token)
	if err != nil {
		r.log.Debug(ctx, "session token rejected",
			logger.Module("session"),
			logger.Action("resolve"),
			zap.Error(err),
		)
		return domain.Unauthenticated(), nil
	}

	record, err := r.store.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return domain.Unauthenticated(), nil
	}
	if err != nil {
		return domain.Unauthenticated(), authz.Unavailable("session store", err)
	}

	// The token and the stored session must agree on the principal;
	// a mismatch means a forged or badly recycled token.
	if record.PrincipalID != claims.Subject || string(record.Kind) != claims.Kind {
		r.log.Warn(ctx, "session principal mismatch",
			logger.Module("session"),
			logger.Action("resolve"),
			zap.String("session_id", claims.SessionID),
		)
		return domain.Unauthenticated(), nil
	}

	identity, err := r.loadIdentity(ctx, record)
	if err != nil {
		return domain.Unauthenticated(), err
	}
	if !identity.IsAuthenticated() {
		return identity, nil
	}

	if allowSideEffects {
		if err := r.store.Touch(ctx, record.SessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			// Refresh failure must not change the access decision
			r.log.Warn(ctx, "session touch failed",
				logger.Module("session"),
				logger.Action("resolve"),
				zap.Error(err),
			)
		}
	}

	return identity, nil
}

// loadIdentity reads the principal record fresh from the primary store.
// Authorization data (role, status, zone) is never trusted from the token.
func (r *Resolver) loadIdentity(ctx context.Context, record *Record) (domain.Identity, error) {
	switch record.Kind {
	case domain.IdentityStaff:
		staff, err := r.staff.GetStaff(ctx, record.PrincipalID)
		if err != nil {
			if errors.Is(err, repo.ErrStaffNotFound) {
				return domain.Unauthenticated(), nil
			}
			return domain.Unauthenticated(), authz.Unavailable("staff store", err)
		}
		return staff.Identity(), nil

	case domain.IdentityCommunity:
		profile, err := r.profiles.GetProfile(ctx, record.PrincipalID)
		if err != nil {
			if errors.Is(err, repo.ErrProfileNotFound) {
				return domain.Unauthenticated(), nil
			}
			return domain.Unauthenticated(), authz.Unavailable("profile store", err)
		}
		return profile.Identity(), nil
	}

	return domain.Unauthenticated(), nil
}
