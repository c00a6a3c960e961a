package ctxutil

import (
	"context"
	"testing"
)

func TestWithRequestID_And_RequestIDFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")

	got := RequestIDFromCtx(ctx)
	if got != "req-123" {
		t.Fatalf("expected req-123, got %s", got)
	}
}

func TestRequestIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}

func TestWithClientIP_And_ClientIPFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithClientIP(context.Background(), "203.0.113.7")

	if got := ClientIPFromCtx(ctx); got != "203.0.113.7" {
		t.Fatalf("expected 203.0.113.7, got %s", got)
	}
}

func TestClientIPFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := ClientIPFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %s", got)
	}
}
