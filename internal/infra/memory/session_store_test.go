package memory

import (
	"context"
	"testing"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, _ := store.Get(ctx, "user_id"); ok {
		t.Fatalf("expected empty store")
	}

	if err := store.Set(ctx, "user_id", "7"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, _ := store.Get(ctx, "user_id")
	if !ok || value != "7" {
		t.Fatalf("expected stored value, got %q ok=%v", value, ok)
	}

	if err := store.Remove(ctx, "user_id"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "user_id"); ok {
		t.Fatalf("expected key removed")
	}
}
