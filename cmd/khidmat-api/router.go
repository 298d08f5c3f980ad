package main

import (
	"context"
	"net/http"
	"time"

	"khidmat-api/internal/config"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/http/handler"
	"khidmat-api/internal/http/middleware"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/ratelimit"
	"khidmat-api/internal/repo"
	"khidmat-api/internal/session"
	"khidmat-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps carries everything buildRouter needs, so serve.go and the
// router tests construct routers the same way.
type RouterDeps struct {
	Cfg             *config.Config
	Log             *logger.Logger
	Resolver        *session.Resolver
	IdempotencyRepo *repo.IdempotencyRepo
	RateLimiter     *ratelimit.RedisRateLimiter
	OTelMetrics     *telemetry.Metrics
	Metrics         *metrics.Metrics
	Pool            *pgxpool.Pool // readiness check

	AuthHandler         *handler.AuthHandler
	GateHandler         *handler.GateHandler
	IssueHandler        *handler.IssueHandler
	AidHandler          *handler.AidHandler
	AnnouncementHandler *handler.AnnouncementHandler
	ZoneHandler         *handler.ZoneHandler
}

func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.OTelMetrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.OTelMetrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Pool == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","note":"pool is nil"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Pool.Ping(ctx); err != nil {
			deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Every /v1 route resolves the session first: read-only for safe
	// methods, TTL-sliding for mutations.
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(deps.Resolver))

		// Auth (no gate: login and session introspection work for everyone)
		if deps.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/staff/login", deps.AuthHandler.LoginStaff)
				r.Post("/community/login", deps.AuthHandler.LoginCommunity)
				r.Post("/logout", deps.AuthHandler.Logout)
				r.Get("/session", deps.AuthHandler.Session)
			})
		}

		if deps.GateHandler != nil {
			r.Get("/gate/{workspace}", deps.GateHandler.Check)
		}

		// Community workspace
		r.Route("/community", func(r chi.Router) {
			r.Use(middleware.WorkspaceGate(domain.WorkspaceCommunity, deps.Metrics))
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerPrincipalPerMin))

			if deps.IssueHandler != nil {
				r.Route("/issues", func(r chi.Router) {
					r.Get("/", deps.IssueHandler.ListIssues)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/", deps.IssueHandler.CreateIssue)
					r.Get("/{issueId}", deps.IssueHandler.GetIssue)
				})
			}

			if deps.AnnouncementHandler != nil {
				r.Get("/announcements", deps.AnnouncementHandler.ListFor(domain.WorkspaceCommunity))
			}
		})

		// Staff workspace
		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.WorkspaceGate(domain.WorkspaceStaff, deps.Metrics))
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerPrincipalPerMin))

			if deps.IssueHandler != nil {
				r.Route("/issues", func(r chi.Router) {
					r.Get("/", deps.IssueHandler.ListIssues)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/", deps.IssueHandler.CreateIssue)
					r.Get("/{issueId}", deps.IssueHandler.GetIssue)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Patch("/{issueId}/status", deps.IssueHandler.UpdateStatus)
				})
			}

			if deps.AidHandler != nil {
				r.Route("/programs", func(r chi.Router) {
					r.Get("/", deps.AidHandler.ListPrograms)
					r.Get("/{programId}", deps.AidHandler.GetProgram)
					r.Get("/{programId}/households", deps.AidHandler.Checklist)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/{programId}/households/{householdId}/mark", deps.AidHandler.MarkReceived)
					r.Delete("/{programId}/households/{householdId}/mark", deps.AidHandler.UnmarkReceived)
				})
			}

			if deps.AnnouncementHandler != nil {
				r.Get("/announcements", deps.AnnouncementHandler.ListFor(domain.WorkspaceStaff))
			}
		})

		// Admin workspace
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.WorkspaceGate(domain.WorkspaceAdmin, deps.Metrics))
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerPrincipalPerMin))

			if deps.IssueHandler != nil {
				r.Route("/issues/{issueId}", func(r chi.Router) {
					r.Delete("/", deps.IssueHandler.DeleteIssue)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Patch("/assign", deps.IssueHandler.AssignStaff)
				})
			}

			if deps.AidHandler != nil {
				r.Route("/programs", func(r chi.Router) {
					r.Get("/", deps.AidHandler.ListPrograms)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/", deps.AidHandler.CreateProgram)
					r.Get("/{programId}", deps.AidHandler.GetProgram)
					r.Get("/{programId}/assignments", deps.AidHandler.ListAssignments)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/{programId}/assignments", deps.AidHandler.CreateAssignment)
				})
				r.Delete("/assignments/{assignmentId}", deps.AidHandler.DeleteAssignment)
			}

			if deps.ZoneHandler != nil {
				r.Route("/zones", func(r chi.Router) {
					r.Get("/", deps.ZoneHandler.ListZones)
					r.Get("/{zoneId}/villages", deps.ZoneHandler.ListVillages)
				})
			}

			if deps.AnnouncementHandler != nil {
				r.Route("/announcements", func(r chi.Router) {
					r.Get("/", deps.AnnouncementHandler.ListFor(domain.WorkspaceAdmin))
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Post("/", deps.AnnouncementHandler.Create)
					r.With(middleware.IdempotencyMiddleware(deps.IdempotencyRepo)).Patch("/{announcementId}", deps.AnnouncementHandler.Update)
					r.Delete("/{announcementId}", deps.AnnouncementHandler.Delete)
				})
			}
		})
	})

	return r
}
