package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"
	"khidmat-api/internal/service"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, status int, code, message string) {
	log.Warn(ctx, "request rejected",
		zap.Int("status", status),
		zap.String("code", code),
	)
	httperr.WriteError(w, ctx, status, code, message)
}

// handleServiceError maps service-layer errors to HTTP responses. The
// authorization taxonomy goes through WriteAuthzError so that store
// failures surface as 503 and denials carry their specific code; domain
// sentinels get their own statuses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated),
		errors.Is(err, authz.ErrForbidden),
		authz.IsUnavailable(err):
		log.Warn(ctx, "authorization denied", zap.Error(err))
		httperr.WriteAuthzError(w, ctx, err)
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn(ctx, "login rejected")
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, service.ErrIssueNotFound):
		log.Debug(ctx, "issue not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "issue not found")
	case errors.Is(err, service.ErrProgramNotFound):
		log.Debug(ctx, "program not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "aid program not found")
	case errors.Is(err, service.ErrHouseholdNotFound):
		log.Debug(ctx, "household not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "household not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		log.Debug(ctx, "assignment not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "assignment not found")
	case errors.Is(err, service.ErrAnnouncementNotFound):
		log.Debug(ctx, "announcement not found", zap.Error(err))
		httperr.NotFound404(w, ctx, "announcement not found")
	case errors.Is(err, service.ErrInvalidIssueStatus):
		log.Warn(ctx, "invalid issue status", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: pending, in_progress, resolved, closed")
	case errors.Is(err, service.ErrInvalidAssignmentType):
		log.Warn(ctx, "invalid assignment type", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, "assignmentType must be: ketua_cawangan")
	case errors.Is(err, repo.ErrStaffNotFound):
		log.Warn(ctx, "referenced staff not found", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, "assigned staff member does not exist")
	case errors.Is(err, repo.ErrDuplicateAssignment):
		log.Warn(ctx, "duplicate assignment", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusConflict, httperr.ErrCodeConflict, "an assignment for this staff, program and zone already exists")
	default:
		log.Error(ctx, "unhandled internal server error", zap.Error(err))
		logger.SetRootError(ctx, err)
		httperr.InternalError500(w, ctx, "an internal error occurred")
	}
}
