package middleware

import (
	"fmt"
	"net/http"
	"time"

	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/ratelimit"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces rate limiting per principal. Anonymous
// requests fall back to the client address so login endpoints stay
// protected too. Redis failure fails open: dropping every request because
// the limiter is down would be a worse outage.
func RateLimitMiddleware(limiter *ratelimit.RedisRateLimiter, limitPerMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.GetLogger(r.Context())

			key := IdentityFromContext(r.Context()).PrincipalID()
			if key == "" {
				key = "anon:" + sanitizeRemoteAddr(r.RemoteAddr)
			}

			allowed, remaining, err := limiter.AllowRequest(r.Context(), key, limitPerMin, 60)
			if err != nil {
				log.Warn(r.Context(), "rate limit check failed",
					logger.Module("http"),
					logger.Action("ratelimit"),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limitPerMin))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(60*time.Second).Unix()))

			if !allowed {
				span := trace.SpanFromContext(r.Context())
				span.AddEvent("rate_limit_exceeded")

				log.Warn(r.Context(), "rate limit exceeded",
					logger.Module("http"),
					logger.Action("ratelimit"),
					zap.Int("limit", limitPerMin),
				)

				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
