package handler

import (
	"errors"
	"net/http"

	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ZoneHandler serves zone and village reference data for the admin
// workspace. These are plain reads with no scoping beyond the gate; zone
// administration itself lives outside this service.
type ZoneHandler struct {
	zones *repo.ZoneRepository
}

func NewZoneHandler(zones *repo.ZoneRepository) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// ListZones handles GET /v1/admin/zones
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	zones, err := h.zones.ListZones(ctx)
	if err != nil {
		logger.SetRootError(ctx, err)
		log.Error(ctx, "list zones failed", zap.Error(err))
		httperr.InternalError500(w, ctx, "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": zones})
}

// ListVillages handles GET /v1/admin/zones/{zoneId}/villages
func (h *ZoneHandler) ListVillages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	zoneID := chi.URLParam(r, "zoneId")
	if zoneID == "" {
		writeError(w, ctx, log, http.StatusBadRequest, "INVALID_ZONE_ID", "zoneId is required")
		return
	}

	if _, err := h.zones.GetZone(ctx, zoneID); err != nil {
		if errors.Is(err, repo.ErrZoneNotFound) {
			log.Debug(ctx, "zone not found", zap.String("zone_id", zoneID))
			httperr.NotFound404(w, ctx, "zone not found")
			return
		}
		logger.SetRootError(ctx, err)
		log.Error(ctx, "load zone failed", zap.Error(err))
		httperr.InternalError500(w, ctx, "an internal error occurred")
		return
	}

	villages, err := h.zones.ListVillages(ctx, zoneID)
	if err != nil {
		logger.SetRootError(ctx, err)
		log.Error(ctx, "list villages failed", zap.Error(err))
		httperr.InternalError500(w, ctx, "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": villages})
}
