package handler

import (
	"encoding/json"
	"net/http"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AnnouncementHandler struct {
	service *service.AnnouncementService
}

func NewAnnouncementHandler(service *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// ListFor returns the listing handler for one workspace: each route group
// mounts its own, so the audience filter follows the mount point.
func (h *AnnouncementHandler) ListFor(workspace domain.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.GetLogger(ctx)

		identity := middleware.IdentityFromContext(ctx)

		announcements, err := h.service.ListFor(ctx, identity, workspace)
		if err != nil {
			handleServiceError(w, ctx, log, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"data": announcements})
	}
}

// Create handles POST /v1/admin/announcements
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	identity := middleware.IdentityFromContext(ctx)

	var req domain.CreateAnnouncementRequest
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

	log.Info(ctx, "creating announcement",
		logger.Module("announcement"),
		zap.String("audience", string(req.Audience)),
	)

	announcement, err := h.service.Create(ctx, identity, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, announcement)
}

// Update handles PATCH /v1/admin/announcements/{announcementId}
func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	announcementID := chi.URLParam(r, "announcementId")
	if announcementID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ANNOUNCEMENT_ID", "announcementId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	var req domain.UpdateAnnouncementRequest
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

	announcement, err := h.service.Update(ctx, identity, announcementID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, announcement)
}

// Delete handles DELETE /v1/admin/announcements/{announcementId}
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	announcementID := chi.URLParam(r, "announcementId")
	if announcementID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ANNOUNCEMENT_ID", "announcementId is required")
		return
	}

	identity := middleware.IdentityFromContext(ctx)

	if err := h.service.Delete(ctx, identity, announcementID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
