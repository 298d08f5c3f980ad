package logger_test

import (
	"context"
	"strings"
	"testing"

	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/observability/requestid"
)

func TestLogger_Levels(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Verify the wrapper methods do not panic at any level
	log.Info(ctx, "test info message", logger.Module("test"), logger.Action("test_action"))
	log.Warn(ctx, "test warn message", logger.Module("test"), logger.Action("test_action"))
	log.Error(ctx, "test error message", logger.Module("test"), logger.Action("test_action"))
	log.Debug(ctx, "test debug message", logger.Module("test"), logger.Action("test_action"))
}

func TestLogger_DefaultsMissingModuleAction(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	// Missing module/action must degrade to "unknown" defaults, not panic
	log.Info(context.Background(), "test message without module/action")
}

func TestLogger_ContextFields(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx := context.Background()
	ctx = logger.SetRequestIDInContext(ctx, "test-req-123")
	ctx = logger.SetWorkspaceInContext(ctx, "staff")
	ctx = logger.SetIdentityIDInContext(ctx, "staff-789")

	log.Info(ctx, "test with context", logger.Module("test"), logger.Action("test_context"))

	if got := logger.GetRequestIDFromContext(ctx); got != "test-req-123" {
		t.Errorf("GetRequestIDFromContext() = %q, want %q", got, "test-req-123")
	}
	if got := logger.GetWorkspaceFromContext(ctx); got != "staff" {
		t.Errorf("GetWorkspaceFromContext() = %q, want %q", got, "staff")
	}
	if got := logger.GetIdentityIDFromContext(ctx); got != "staff-789" {
		t.Errorf("GetIdentityIDFromContext() = %q, want %q", got, "staff-789")
	}
}

func TestLogger_RequiresServiceName(t *testing.T) {
	_, err := logger.New("", "info")
	if err == nil {
		t.Fatal("expected error when serviceName is empty, got nil")
	}
	if !strings.Contains(err.Error(), "serviceName is required") {
		t.Errorf("expected 'serviceName is required' error, got: %v", err)
	}
}

func TestLogger_LevelParsing(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			log, err := logger.New("test-service", level)
			if err != nil {
				t.Fatalf("failed to create logger: %v", err)
			}
			defer log.Sync()
		})
	}
}

func TestLogger_GetLoggerFromContext(t *testing.T) {
	log, err := logger.New("test-service", "info")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer log.Sync()

	ctx := logger.SetLoggerInContext(context.Background(), log)
	if retrieved := logger.GetLogger(ctx); retrieved == nil {
		t.Error("GetLogger returned nil")
	}
}

func TestLogger_GetLoggerFromEmptyContext(t *testing.T) {
	ctx := context.Background()

	// GetLogger should return a fallback logger, not panic
	log := logger.GetLogger(ctx)
	if log == nil {
		t.Fatal("GetLogger returned nil for empty context")
	}
	log.Info(ctx, "test with fallback logger", logger.Module("test"), logger.Action("test_fallback"))
}

func TestLogger_RootErrorContainer(t *testing.T) {
	ctx := logger.InitRootErrorContext(context.Background())

	if err := logger.GetRootError(ctx); err != nil {
		t.Errorf("expected nil root error, got %v", err)
	}

	wantErr := context.DeadlineExceeded
	logger.SetRootError(ctx, wantErr)
	if got := logger.GetRootError(ctx); got != wantErr {
		t.Errorf("GetRootError() = %v, want %v", got, wantErr)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	log, _ := logger.New("bench-service", "info")
	defer log.Sync()

	ctx := requestid.SetRequestID(context.Background(), "bench-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		log.Info(ctx, "benchmark message", logger.Module("bench"), logger.Action("bench_action"))
	}
}
