package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/httperr"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.AuthService
	metrics *metrics.Metrics
}

func NewAuthHandler(service *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: service, metrics: m}
}

type staffLoginRequest struct {
	StaffID string `json:"staffId"`
}

type communityLoginRequest struct {
	ICNumber string `json:"icNumber"`
}

// sessionResponse is the GET /v1/auth/session payload: the resolved
// identity, its capability flags, and the gate decision per workspace.
type sessionResponse struct {
	Identity     domain.Identity                      `json:"identity"`
	Capabilities domain.Capabilities                  `json:"capabilities"`
	Workspaces   map[domain.Workspace]domain.Decision `json:"workspaces"`
}

// LoginStaff handles POST /v1/auth/staff/login
func (h *AuthHandler) LoginStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}

	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.StaffID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "staffId is required")
		return
	}

	result, err := h.service.LoginStaff(ctx, req.StaffID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	h.metrics.IncSessionCreated(string(result.Identity.Kind))
	writeJSON(w, http.StatusOK, result)
}

// LoginCommunity handles POST /v1/auth/community/login. The IC number is
// never logged.
func (h *AuthHandler) LoginCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req communityLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn(ctx, "invalid request body", zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "request body must be valid JSON")
		return
	}

	req.ICNumber = strings.TrimSpace(req.ICNumber)
	if req.ICNumber == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "icNumber is required")
		return
	}

	result, err := h.service.LoginCommunity(ctx, req.ICNumber)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	h.metrics.IncSessionCreated(string(result.Identity.Kind))
	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /v1/auth/logout. Requests without a bearer token
// succeed: the caller already holds no live session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	token := middleware.BearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusNoContent, nil)
		return
	}

	if err := h.service.Logout(ctx, token); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// Session handles GET /v1/auth/session. Works for unauthenticated callers
// too: the response then carries the unauthenticated identity and the
// login redirects per workspace.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	caps := domain.Classify(identity)

	resp := sessionResponse{
		Identity:     identity,
		Capabilities: caps,
		Workspaces: map[domain.Workspace]domain.Decision{
			domain.WorkspaceAdmin:     domain.Gate(caps, domain.WorkspaceAdmin),
			domain.WorkspaceStaff:     domain.Gate(caps, domain.WorkspaceStaff),
			domain.WorkspaceCommunity: domain.Gate(caps, domain.WorkspaceCommunity),
		},
	}

	writeJSON(w, http.StatusOK, resp)
}
