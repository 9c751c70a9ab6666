package cache

import (
	"context"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](2, time.Minute)

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	if v, ok := c.Get(ctx, "a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}

	// a was just used, so b is the eviction candidate
	c.Set(ctx, "c", 3)
	if _, ok := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", "v")
	now = now.Add(30 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired too early")
	}
	c.Set(ctx, "other", "x")
	now = now.Add(45 * time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("entry should have expired")
	}
	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", n)
	}
}

func TestLRUCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](10, time.Minute)
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Delete(ctx, "a", "b", "missing")
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Size())
	}
}

func TestManagerStop(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.Stop()
}

func TestLRUCacheDeleteAndMinimumSize(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache[int](0, time.Minute)
	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	if c.Size() != 1 {
		t.Fatalf("expected non-positive size to keep one entry, got %d", c.Size())
	}

	c = NewLRUCache[int](5, time.Minute)
	for i, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, i)
	}
	c.Delete(ctx, "a", "c", "missing")
	if _, ok := c.Get(ctx, "b"); !ok || c.Size() != 1 {
		t.Fatalf("expected only b left, size %d", c.Size())
	}
}
