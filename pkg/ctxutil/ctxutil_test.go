package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestUserID_RoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := WithUserID(context.Background(), id)

	got, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected user ID to be present")
	}
	if got != id {
		t.Errorf("got %s, want %s", got, id)
	}
}

func TestUserID_Missing(t *testing.T) {
	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Error("expected ok=false for empty context")
	}
}

func TestUserID_NilUUID(t *testing.T) {
	ctx := WithUserID(context.Background(), uuid.Nil)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Error("expected ok=false for uuid.Nil")
	}
}

func TestUserRole_RoundTrip(t *testing.T) {
	ctx := WithUserRole(context.Background(), "ADMIN")
	if got := UserRoleFromCtx(ctx); got != "ADMIN" {
		t.Errorf("got %q, want ADMIN", got)
	}
	if got := UserRoleFromCtx(context.Background()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Errorf("got %q, want req-123", got)
	}
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
