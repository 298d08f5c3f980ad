package requestid_test

import (
	"context"
	"strings"
	"testing"

	"khidmat-api/internal/observability/requestid"
)

func TestNewRequestID_Format(t *testing.T) {
	id := requestid.NewRequestID()

	if !strings.HasPrefix(id, "req_") {
		t.Errorf("expected ID to start with 'req_', got: %s", id)
	}

	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		t.Errorf("expected ID to have 3 parts separated by '_', got: %d parts", len(parts))
	}

	if len(id) < 30 {
		t.Errorf("expected ID length >= 30, got: %d", len(id))
	}
}

func TestNewRequestID_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	const count = 1000

	for i := 0; i < count; i++ {
		id := requestid.NewRequestID()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	if id := requestid.GetRequestID(context.Background()); id != "" {
		t.Errorf("expected empty string for empty context, got: %s", id)
	}
}

func TestSetRequestID_AndGet(t *testing.T) {
	ctx := requestid.SetRequestID(context.Background(), "test-req-123")
	if got := requestid.GetRequestID(ctx); got != "test-req-123" {
		t.Errorf("expected %q, got %q", "test-req-123", got)
	}
}

func TestSetRequestID_Overwrite(t *testing.T) {
	ctx := requestid.SetRequestID(context.Background(), "first-id")
	ctx = requestid.SetRequestID(ctx, "second-id")

	if got := requestid.GetRequestID(ctx); got != "second-id" {
		t.Errorf("expected 'second-id', got %q", got)
	}
}

func BenchmarkNewRequestID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = requestid.NewRequestID()
	}
}
