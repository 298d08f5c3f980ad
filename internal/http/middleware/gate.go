package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"

	"go.uber.org/zap"
)

// GateResponse is the body returned when the gate turns a request away.
// It extends the standard error envelope with the navigation target so
// web clients always know where to send the user.
type GateResponse struct {
	OK       bool                 `json:"ok"`
	Error    *httperr.ErrorDetail `json:"error"`
	Redirect string               `json:"redirect"`
}

// WorkspaceGate enforces workspace access for a route group. The decision
// comes from the pure gate over the request's capabilities; a denial is
// 401 for anonymous callers and 403 otherwise, both carrying the redirect
// target the gate chose.
func WorkspaceGate(workspace domain.Workspace, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.SetWorkspaceInContext(r.Context(), string(workspace))
			caps := CapabilitiesFromContext(ctx)

			decision := domain.Gate(caps, workspace)
			if decision.Allow {
				m.IncGateDecision(string(workspace), "allow")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			m.IncGateDecision(string(workspace), "redirect")

			log := logger.GetLogger(ctx)
			log.Info(ctx, "workspace gate redirect",
				logger.Module("gate"),
				logger.Action("deny"),
				zap.String("workspace", string(workspace)),
				zap.Bool("authenticated", caps.Authenticated),
				zap.String("redirect", decision.RedirectTo),
			)

			writeGateDenial(w, ctx, caps, decision)
		})
	}
}

func writeGateDenial(w http.ResponseWriter, ctx context.Context, caps domain.Capabilities, decision domain.Decision) {
	status := http.StatusForbidden
	code := httperr.ErrCodeWorkspaceDenied
	message := "no access to this workspace"
	if !caps.Authenticated {
		status = http.StatusUnauthorized
		code = httperr.ErrCodeUnauthenticated
		message = "authentication required"
	}

	response := GateResponse{
		OK: false,
		Error: &httperr.ErrorDetail{
			Code:    code,
			Message: message,
		},
		Redirect: decision.RedirectTo,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
