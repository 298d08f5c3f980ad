package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	OK    bool         `json:"ok"`
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
}

// Error codes for 401 Unauthorized (authentication failures)
const (
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeMissingAuthorization = "MISSING_AUTHORIZATION"
)

// Error codes for 403 Forbidden (authenticated but denied)
const (
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeNotAssigned             = "NOT_ASSIGNED"
	ErrCodeCommunityIssueProtected = "COMMUNITY_ISSUE_PROTECTED"
	ErrCodeWorkspaceDenied         = "WORKSPACE_DENIED"
)

// Error codes for 400 Bad Request (validation errors)
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeValidationError  = "VALIDATION_ERROR"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeConflict         = "CONFLICT"
)

// Error codes for 404 and 5xx
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUnavailable   = "UNAVAILABLE"
)

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	log := logger.GetLogger(ctx)
	reqID := logger.GetRequestIDFromContext(ctx)

	log.Error(ctx, "request failed",
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
		zap.String("request_id", reqID),
	)

	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// WriteErrorWithFields writes a standardized error response with field-level details
func WriteErrorWithFields(w http.ResponseWriter, ctx context.Context, status int, code, message string, fields map[string]string) {
	log := logger.GetLogger(ctx)

	fieldPairs := make([]zap.Field, 0, len(fields)+3)
	fieldPairs = append(fieldPairs,
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
	)
	for k, v := range fields {
		fieldPairs = append(fieldPairs, zap.String("field_"+k, v))
	}

	log.Error(ctx, "request failed with field errors", fieldPairs...)

	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// Unauthorized401 writes a 401 Unauthorized response
func Unauthorized401(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, code, message)
}

// Forbidden403 writes a 403 Forbidden response
func Forbidden403(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusForbidden, code, message)
}

// BadRequest400 writes a 400 Bad Request response
func BadRequest400(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusBadRequest, code, message)
}

// BadRequest400WithFields writes a 400 Bad Request response with field-level errors
func BadRequest400WithFields(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusBadRequest, code, message, fields)
}

// NotFound404 writes a 404 Not Found response
func NotFound404(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, message)
}

// Unavailable503 writes a 503 Service Unavailable response. Store failures
// must surface as 503, never as a denial.
func Unavailable503(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// InternalError500 writes a 500 Internal Server Error response
func InternalError500(w http.ResponseWriter, ctx context.Context, message string) {
	reqID := logger.GetRequestIDFromContext(ctx)

	log := logger.GetLogger(ctx)
	log.Error(ctx, "internal server error",
		zap.String("message", message),
		zap.String("request_id", reqID),
	)

	// In prod, return generic message for security
	response := ErrorResponse{
		OK: false,
		Error: &ErrorDetail{
			Code:    ErrCodeInternalError,
			Message: "Internal Server Error",
		},
	}

	// APP_ENV detection
	if os.Getenv("APP_ENV") == "dev" {
		response.Error.ErrorID = reqID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(response)
}

// InternalError is an alias for InternalError500 as requested
func InternalError(w http.ResponseWriter, ctx context.Context) {
	InternalError500(w, ctx, "internal server error")
}

// WriteAuthzError maps the authorization error taxonomy onto the response
// envelope: unauthenticated 401, unavailable 503, denial 403 with the
// specific code when one was attached.
func WriteAuthzError(w http.ResponseWriter, ctx context.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		Unauthorized401(w, ctx, ErrCodeUnauthenticated, "authentication required")
	case authz.IsUnavailable(err):
		Unavailable503(w, ctx, "authorization backend unavailable")
	case errors.Is(err, authz.ErrForbidden):
		code := ErrCodeForbidden
		message := "insufficient permissions"
		if authzErr, ok := authz.AsAuthzError(err); ok {
			code = authzErr.Code
			message = authzErr.Reason
		}
		Forbidden403(w, ctx, code, message)
	default:
		InternalError(w, ctx)
	}
}
