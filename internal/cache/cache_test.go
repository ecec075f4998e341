package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string]()

	c.Set(ctx, "a", "alpha", time.Minute)
	got, ok := c.Get(ctx, "a")
	if !ok || got != "alpha" {
		t.Fatalf("expected alpha, got %q ok=%v", got, ok)
	}
}

func TestTTLCacheExpiresOnRead(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[int]()

	c.Set(ctx, "stale", 1, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if _, ok := c.Get(ctx, "stale"); ok {
		t.Fatal("expired entry must read as a miss")
	}
}

func TestTTLCacheDeleteIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string]()

	c.Set(ctx, "a", "alpha", 0)
	c.Set(ctx, "b", "beta", 0)
	c.Delete(ctx, "a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("deleted key must miss")
	}
	if got, ok := c.Get(ctx, "b"); !ok || got != "beta" {
		t.Fatal("unrelated key must survive delete")
	}
}

func TestKeyNormalizes(t *testing.T) {
	if got := Key(" Org-1 ", "", "Prod-9"); got != "org-1|prod-9" {
		t.Fatalf("unexpected key: %q", got)
	}
}
