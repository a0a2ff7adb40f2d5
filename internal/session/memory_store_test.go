package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := s.Set(ctx, KeyAuthToken, "t1", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := s.Get(ctx, KeyAuthToken)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if val != "t1" {
		t.Fatalf("got %q, want t1", val)
	}

	if err := s.Remove(ctx, KeyAuthToken); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyAuthToken); ok {
		t.Fatal("expected miss after remove")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "short", "v", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Fatal("expected expired entry to be gone")
	}

	// Zero ttl means no expiry.
	if err := s.Set(ctx, "forever", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "forever"); !ok {
		t.Fatal("expected zero-ttl entry to survive")
	}
}
