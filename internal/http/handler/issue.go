package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type IssueHandler struct {
	service *service.IssueService
	metrics *metrics.Metrics
}

func NewIssueHandler(service *service.IssueService, m *metrics.Metrics) *IssueHandler {
	return &IssueHandler{service: service, metrics: m}
}

// ListIssues handles GET /v1/{workspace}/issues
func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	identity := middleware.IdentityFromContext(ctx)

	var params domain.ListIssuesParams

	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		params.Cursor = &cursor
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			writeError(w, ctx, log, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
			return
		}
		params.Limit = limit
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := domain.IssueStatus(statusStr)
		if !status.IsValid() {
			writeError(w, ctx, log, http.StatusBadRequest, "INVALID_STATUS", "status must be one of: pending, in_progress, resolved, closed")
			return
		}
		params.Status = &status
	}

	if zoneID := r.URL.Query().Get("zoneId"); zoneID != "" {
		params.ZoneID = &zoneID
	}

	response, err := h.service.ListIssues(ctx, identity, params)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetIssue handles GET /v1/{workspace}/issues/{issueId}
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	issueID := chi.URLParam(r, "issueId")
	if issueID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ISSUE_ID", "issueId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	issue, err := h.service.GetIssue(ctx, identity, issueID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

// CreateIssue handles POST /v1/{workspace}/issues. The reporter binding
// comes from the session identity, never from the body.
func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	identity := middleware.IdentityFromContext(ctx)

	var req domain.CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}

	if err := req.Validate(); err != nil {
		log.Warn(ctx, "validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
		return
	}

	log.Info(ctx, "creating issue",
		logger.Module("issue"),
		zap.String("kind", string(identity.Kind)),
	)

	issue, err := h.service.CreateIssue(ctx, identity, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	origin := "staff"
	if identity.Kind == domain.IdentityCommunity {
		origin = "community"
	}
	h.metrics.IncIssueCreated(origin)

	writeJSON(w, http.StatusCreated, issue)
}

// UpdateStatus handles PATCH /v1/staff/issues/{issueId}/status
func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	issueID := chi.URLParam(r, "issueId")
	if issueID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ISSUE_ID", "issueId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	var req domain.UpdateIssueStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}

	if err := req.Validate(); err != nil {
		log.Warn(ctx, "validation failed", zap.Error(err))
		httperr.WriteError(w, ctx, http.StatusUnprocessableEntity, httperr.ErrCodeValidationError, err.Error())
		return
	}

	issue, err := h.service.UpdateStatus(ctx, identity, issueID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

type assignStaffRequest struct {
	StaffID *string `json:"staffId"`
}

// AssignStaff handles PATCH /v1/admin/issues/{issueId}/assign. A null
// staffId clears the assignment.
func (h *IssueHandler) AssignStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	issueID := chi.URLParam(r, "issueId")
	if issueID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ISSUE_ID", "issueId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	var req assignStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}

	issue, err := h.service.AssignStaff(ctx, identity, issueID, req.StaffID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, issue)
}

// DeleteIssue handles DELETE /v1/admin/issues/{issueId}
func (h *IssueHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	issueID := chi.URLParam(r, "issueId")
	if issueID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ISSUE_ID", "issueId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	log.Info(ctx, "deleting issue",
		logger.Module("issue"),
		zap.String("issue_id", issueID),
	)

	if err := h.service.DeleteIssue(ctx, identity, issueID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
