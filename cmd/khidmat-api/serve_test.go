package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"khidmat-api/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHealthEndpoint verifies /health returns 200 without dependencies
func TestHealthEndpoint(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should return 200")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response["status"])
}

// TestHealthEndpoint_ReturnsRequestID verifies X-Request-Id header is returned
func TestHealthEndpoint_ReturnsRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id should be generated and returned")
	assert.Contains(t, requestID, "req_", "Request ID should have req_ prefix")
}

// TestHealthEndpoint_PreservesRequestID verifies existing X-Request-Id is preserved
func TestHealthEndpoint_PreservesRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req_client_supplied")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, "req_client_supplied", w.Header().Get("X-Request-Id"))
}
