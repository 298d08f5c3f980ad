package handler

import (
	"net/http"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GateHandler answers workspace entry checks for the frontend middleware.
// It always returns 200 with a decision body; denial is a redirect
// target, never an HTTP error.
type GateHandler struct {
	metrics *metrics.Metrics
}

func NewGateHandler(m *metrics.Metrics) *GateHandler {
	return &GateHandler{metrics: m}
}

// Check handles GET /v1/gate/{workspace}
func (h *GateHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspace := domain.Workspace(chi.URLParam(r, "workspace"))
	if !workspace.IsValid() {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "workspace must be one of: admin, staff, community")
		return
	}

	caps := middleware.CapabilitiesFromContext(ctx)
	decision := domain.Gate(caps, workspace)

	result := "allow"
	if !decision.Allow {
		result = "redirect"
	}
	h.metrics.IncGateDecision(string(workspace), result)

	log.Debug(ctx, "gate decision",
		logger.Module("gate"),
		zap.String("workspace", string(workspace)),
		zap.Bool("allow", decision.Allow),
	)

	writeJSON(w, http.StatusOK, decision)
}
