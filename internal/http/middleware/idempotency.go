package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"go.uber.org/zap"
)

// IdempotencyMiddleware replays cached responses for repeated mutations
// carrying the same Idempotency-Key. Keys are scoped to the authenticated
// principal; anonymous requests skip the cache entirely.
func IdempotencyMiddleware(idempotencyRepo *repo.IdempotencyRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.GetLogger(r.Context())

			// Only apply to POST, PUT, PATCH methods
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if len(idempotencyKey) > 255 {
				log.Warn(r.Context(), "idempotency key too long",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.Int("length", len(idempotencyKey)),
				)
				http.Error(w, "idempotency key must be 255 characters or less", http.StatusBadRequest)
				return
			}

			principalID := IdentityFromContext(r.Context()).PrincipalID()
			if principalID == "" {
				next.ServeHTTP(w, r)
				return
			}

			keyHash := repo.HashKey(idempotencyKey)
			w.Header().Set("X-Idempotency-Key-Hash", keyHash)

			cached, err := idempotencyRepo.CheckKey(r.Context(), principalID, keyHash)
			if err != nil {
				log.Error(r.Context(), "failed to check idempotency key",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.Error(err),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if cached != nil {
				log.Info(r.Context(), "returning cached response for idempotent request",
					logger.Module("http"),
					logger.Action("idempotency"),
					zap.String("key_hash", keyHash),
					zap.Int("status", cached.Status),
				)

				for k, v := range cached.Headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("X-Idempotency-Replay", "true")

				w.WriteHeader(cached.Status)
				w.Write(cached.Body)
				return
			}

			var requestBody []byte
			if r.Body != nil {
				requestBody, err = io.ReadAll(r.Body)
				if err != nil {
					log.Error(r.Context(), "failed to read request body",
						logger.Module("http"),
						logger.Action("idempotency"),
						zap.Error(err),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				// Restore body for downstream handlers
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
				headers:        make(map[string]string),
			}

			next.ServeHTTP(recorder, r)

			// Store result only for successful responses (2xx)
			if recorder.statusCode >= 200 && recorder.statusCode < 300 {
				for _, key := range []string{"Content-Type", "Location"} {
					if val := recorder.Header().Get(key); val != "" {
						recorder.headers[key] = val
					}
				}

				err = idempotencyRepo.StoreResult(
					r.Context(),
					principalID,
					keyHash,
					idempotencyKey,
					r.Method,
					r.URL.Path,
					json.RawMessage(requestBody),
					recorder.statusCode,
					json.RawMessage(recorder.body.Bytes()),
					recorder.headers,
				)
				if err != nil {
					log.Error(r.Context(), "failed to store idempotency result",
						logger.Module("http"),
						logger.Action("idempotency"),
						zap.Error(err),
					)
				}
			}
		})
	}
}

// responseRecorder captures response for storage
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	headers    map[string]string
	written    bool
}

func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.written {
		rr.statusCode = code
		rr.written = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.written {
		rr.WriteHeader(http.StatusOK)
	}
	rr.body.Write(b)
	return rr.ResponseWriter.Write(b)
}
