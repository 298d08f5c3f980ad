package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/observability/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	log, err := logger.New("test", "info")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	return logger.SetLoggerInContext(context.Background(), log)
}

func TestWriteError(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name           string
		status         int
		code           string
		message        string
		expectedStatus int
	}{
		{
			name:           "401 Unauthorized",
			status:         http.StatusUnauthorized,
			code:           ErrCodeUnauthenticated,
			message:        "authentication required",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "403 Forbidden",
			status:         http.StatusForbidden,
			code:           ErrCodeNotAssigned,
			message:        "no zone assignment for this program",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "400 Bad Request",
			status:         http.StatusBadRequest,
			code:           ErrCodeValidationError,
			message:        "title is required",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "503 Unavailable",
			status:         http.StatusServiceUnavailable,
			code:           ErrCodeUnavailable,
			message:        "session store unavailable",
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, ctx, tt.status, tt.code, tt.message)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var response ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.OK {
				t.Error("expected ok=false")
			}

			if response.Error == nil {
				t.Fatal("expected error detail, got nil")
			}

			if response.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Error.Code)
			}

			if response.Error.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, response.Error.Message)
			}

			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected application/json content type, got %s", ct)
			}
		})
	}
}

func TestWriteErrorWithFields(t *testing.T) {
	ctx := testContext(t)
	rr := httptest.NewRecorder()

	fields := map[string]string{"title": "must be at least 3 characters"}
	WriteErrorWithFields(rr, ctx, http.StatusBadRequest, ErrCodeValidationError, "validation failed", fields)

	var response ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Error.Fields["title"] != "must be at least 3 characters" {
		t.Errorf("expected field detail, got %v", response.Error.Fields)
	}
}

func TestWriteAuthzError(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "unauthenticated maps to 401",
			err:            authz.ErrUnauthenticated,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   ErrCodeUnauthenticated,
		},
		{
			name:           "plain forbidden maps to 403",
			err:            authz.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedCode:   ErrCodeForbidden,
		},
		{
			name:           "denial code is preserved",
			err:            authz.Denied("COMMUNITY_ISSUE_PROTECTED", "community-reported issues cannot be deleted"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   ErrCodeCommunityIssueProtected,
		},
		{
			name:           "not assigned denial",
			err:            authz.Denied("NOT_ASSIGNED", "no zone assignment for this program"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   ErrCodeNotAssigned,
		},
		{
			name:           "store failure maps to 503, never 403",
			err:            authz.Unavailable("session store", errors.New("connection refused")),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   ErrCodeUnavailable,
		},
		{
			name:           "unknown error maps to 500",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteAuthzError(rr, ctx, tt.err)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var response ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Error.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Error.Code)
			}
		})
	}
}
