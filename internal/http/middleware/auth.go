package middleware

import (
	"context"
	"net/http"
	"strings"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/session"
)

type contextKey string

const (
	identityContextKey     contextKey = "identity"
	capabilitiesContextKey contextKey = "capabilities"
)

// BearerToken extracts the bearer token from the Authorization header.
// Returns "" when the header is missing or malformed; an absent token is
// an anonymous request, not an error.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionMiddleware resolves the bearer token into an Identity and derives
// Capabilities, injecting both into the request context. Safe methods use
// the read-only resolver variant so a GET never slides session expiry.
// Anonymous requests pass through with the Unauthenticated identity; the
// per-route guards decide whether that is acceptable. Only a session-store
// failure short-circuits, as 503.
func SessionMiddleware(resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := BearerToken(r)

			var (
				identity domain.Identity
				err      error
			)
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				identity, err = resolver.ResolveReadOnly(ctx, token)
			default:
				identity, err = resolver.Resolve(ctx, token)
			}
			if err != nil {
				logger.SetRootError(ctx, err)
				httperr.Unavailable503(w, ctx, "session could not be resolved")
				return
			}

			caps := domain.Classify(identity)

			ctx = context.WithValue(ctx, identityContextKey, identity)
			ctx = context.WithValue(ctx, capabilitiesContextKey, caps)
			if principalID := identity.PrincipalID(); principalID != "" {
				ctx = logger.SetIdentityIDInContext(ctx, principalID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the resolved identity of the request.
// Unauthenticated when the middleware did not run.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(identityContextKey).(domain.Identity); ok {
		return identity
	}
	return domain.Unauthenticated()
}

// CapabilitiesFromContext returns the derived capabilities of the request
func CapabilitiesFromContext(ctx context.Context) domain.Capabilities {
	if caps, ok := ctx.Value(capabilitiesContextKey).(domain.Capabilities); ok {
		return caps
	}
	return domain.Classify(domain.Unauthenticated())
}

// RequireAuthenticated rejects anonymous requests with 401. Used on
// routes where even read access needs a principal.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).IsAuthenticated() {
			httperr.Unauthorized401(w, r.Context(), httperr.ErrCodeUnauthenticated, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
