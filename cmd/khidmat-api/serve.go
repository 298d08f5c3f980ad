package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khidmat-api/internal/config"
	"khidmat-api/internal/database"
	"khidmat-api/internal/http/handler"
	"khidmat-api/internal/metrics"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/ratelimit"
	"khidmat-api/internal/repo"
	"khidmat-api/internal/service"
	"khidmat-api/internal/session"
	"khidmat-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Khidmat API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting khidmat api",
		zap.String("service", cfg.OTELServiceName),
		zap.String("env", cfg.AppEnv),
	)

	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Telemetry is strictly opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var otelMetrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			otelMetrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized",
			zap.Bool("tracing", tracerProvider != nil),
			zap.Bool("metrics", otelMetrics != nil),
		)
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only)")
	}

	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	// Session plumbing: HS256 token codec + Redis live-session store.
	// Role, status and zone are never read from the token, only from the
	// store-backed resolver.
	secretBytes, err := cfg.SessionSecretBytes()
	if err != nil {
		return err
	}

	codec := session.NewTokenCodec(secretBytes, cfg.SessionIssuer,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
		time.Duration(cfg.SessionClockSkewSecond)*time.Second,
	)
	sessionStore := session.NewRedisStore(redisClient, time.Duration(cfg.SessionIdleTTLMinutes)*time.Minute)

	// Repositories
	staffRepo := repo.NewStaffRepository(pool)
	profileRepo := repo.NewProfileRepository(pool)
	issueRepo := repo.NewIssueRepository(pool)
	aidRepo := repo.NewAidRepository(pool)
	announcementRepo := repo.NewAnnouncementRepository(pool)
	zoneRepo := repo.NewZoneRepository(pool)
	auditRepo := repo.NewAuditRepo(pool)
	idempotencyRepo := repo.NewIdempotencyRepo(pool)

	resolver := session.NewResolver(codec, sessionStore, staffRepo, profileRepo, log)

	// Services
	scopeResolver := service.NewScopeResolver(aidRepo)
	authService := service.NewAuthService(codec, sessionStore, staffRepo, profileRepo, auditRepo, log)
	issueService := service.NewIssueService(issueRepo, profileRepo, auditRepo, log)
	aidService := service.NewAidService(aidRepo, staffRepo, scopeResolver, auditRepo, log)
	announcementService := service.NewAnnouncementService(announcementRepo, auditRepo, log)

	// Prometheus domain counters
	domainMetrics := metrics.New()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, domainMetrics)
	gateHandler := handler.NewGateHandler(domainMetrics)
	issueHandler := handler.NewIssueHandler(issueService, domainMetrics)
	aidHandler := handler.NewAidHandler(aidService, domainMetrics)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	zoneHandler := handler.NewZoneHandler(zoneRepo)

	// Rate limiter
	var rateLimitCounter metric.Int64Counter
	if otelMetrics != nil {
		rateLimitCounter = otelMetrics.RateLimitRejections
	}
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)

	r := buildRouter(RouterDeps{
		Cfg:                 cfg,
		Log:                 log,
		Resolver:            resolver,
		IdempotencyRepo:     idempotencyRepo,
		RateLimiter:         rateLimiter,
		OTelMetrics:         otelMetrics,
		Metrics:             domainMetrics,
		Pool:                pool,
		AuthHandler:         authHandler,
		GateHandler:         gateHandler,
		IssueHandler:        issueHandler,
		AidHandler:          aidHandler,
		AnnouncementHandler: announcementHandler,
		ZoneHandler:         zoneHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
