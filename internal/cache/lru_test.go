package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Second).WithClock(func() time.Time { return now })
	c.Set("k", "v")
	c.Set("other", "v")

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected k to be expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry removed, got %d", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}

	st := c.Stats()
	if st.Misses != 1 || st.Hits != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be deleted")
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("alice|2025-03-14", 1)
	c.Set("alice|2025-03-15", 2)
	c.Set("alicia|2025-03-15", 3)

	if n := c.DeletePrefix("alice|"); n != 2 {
		t.Fatalf("expected 2 entries removed, got %d", n)
	}
	if _, ok := c.Get("alicia|2025-03-15"); !ok {
		t.Fatal("entries of other users must survive")
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestManagerSweepAndStop(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](10, time.Millisecond).WithClock(func() time.Time { return now })
	c.Set("a", 1)
	m := NewManager()
	m.Register(c)

	now = now.Add(time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected sweep to remove 1 entry, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
