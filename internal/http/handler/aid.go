package handler

import (
	"encoding/json"
	"net/http"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AidHandler struct {
	service *service.AidService
	metrics *metrics.Metrics
}

func NewAidHandler(service *service.AidService, m *metrics.Metrics) *AidHandler {
	return &AidHandler{service: service, metrics: m}
}

// ListPrograms handles GET /v1/{workspace}/programs
func (h *AidHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	identity := middleware.IdentityFromContext(ctx)

	programs, err := h.service.ListPrograms(ctx, identity)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": programs})
}

// GetProgram handles GET /v1/{workspace}/programs/{programId}
func (h *AidHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	programID := chi.URLParam(r, "programId")
	if programID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_PROGRAM_ID", "programId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	program, err := h.service.GetProgram(ctx, identity, programID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, program)
}

// CreateProgram handles POST /v1/admin/programs
func (h *AidHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	identity := middleware.IdentityFromContext(ctx)

	var req domain.CreateProgramRequest
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

	log.Info(ctx, "creating aid program",
		logger.Module("aid"),
		zap.String("name", req.Name),
	)

	program, err := h.service.CreateProgram(ctx, identity, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, program)
}

// Checklist handles GET /v1/staff/programs/{programId}/households: the
// distribution checklist restricted to the caller's zone scope.
func (h *AidHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	programID := chi.URLParam(r, "programId")
	if programID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_PROGRAM_ID", "programId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	items, err := h.service.Checklist(ctx, identity, programID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": items})
}

// MarkReceived handles POST /v1/staff/programs/{programId}/households/{householdId}/mark
func (h *AidHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	h.setMark(w, r, true)
}

// UnmarkReceived handles DELETE /v1/staff/programs/{programId}/households/{householdId}/mark
func (h *AidHandler) UnmarkReceived(w http.ResponseWriter, r *http.Request) {
	h.setMark(w, r, false)
}

func (h *AidHandler) setMark(w http.ResponseWriter, r *http.Request, received bool) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	programID := chi.URLParam(r, "programId")
	householdID := chi.URLParam(r, "householdId")
	if programID == "" || householdID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_PARAMETER", "programId and householdId are required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	log.Info(ctx, "setting distribution mark",
		logger.Module("aid"),
		zap.String("program_id", programID),
		zap.String("household_id", householdID),
		zap.Bool("received", received),
	)

	result, err := h.service.MarkReceived(ctx, identity, programID, householdID, received)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	outcome := "marked"
	if !received {
		outcome = "unmarked"
	}
	h.metrics.IncDistributionMark(outcome)

	writeJSON(w, http.StatusOK, result)
}

// CreateAssignment handles POST /v1/admin/programs/{programId}/assignments
func (h *AidHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	programID := chi.URLParam(r, "programId")
	if programID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_PROGRAM_ID", "programId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	var req domain.CreateAssignmentRequest
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

	log.Info(ctx, "creating program assignment",
		logger.Module("aid"),
		zap.String("program_id", programID),
		zap.String("assigned_to", req.AssignedTo),
		zap.String("zone_id", req.ZoneID),
	)

	assignment, err := h.service.CreateAssignment(ctx, identity, programID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignment)
}

// ListAssignments handles GET /v1/admin/programs/{programId}/assignments
func (h *AidHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	programID := chi.URLParam(r, "programId")
	if programID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_PROGRAM_ID", "programId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	assignments, err := h.service.ListAssignments(ctx, identity, programID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": assignments})
}

// DeleteAssignment handles DELETE /v1/admin/assignments/{assignmentId}
func (h *AidHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	assignmentID := chi.URLParam(r, "assignmentId")
	if assignmentID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ASSIGNMENT_ID", "assignmentId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	if err := h.service.DeleteAssignment(ctx, identity, assignmentID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
