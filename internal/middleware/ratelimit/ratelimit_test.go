package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute}).WithClock(c.Now)
	t.Cleanup(rl.Stop)
	return rl, c
}

func TestAllowWithinWindow(t *testing.T) {
	rl, c := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients are not affected")
	}

	c.Advance(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Fatal("new window should reset the counter")
	}
	if got := rl.GetMetrics().TotalHits; got != 1 {
		t.Errorf("TotalHits = %d, want 1", got)
	}
}

func TestWindowDoesNotSlideOnEveryRequest(t *testing.T) {
	rl, c := newTestLimiter(t, 2)

	rl.Allow("a")
	c.Advance(40 * time.Second)
	rl.Allow("a")
	c.Advance(30 * time.Second)
	if !rl.Allow("a") {
		t.Fatal("window started 70s ago and should have reset")
	}
}

func TestRetryAfter(t *testing.T) {
	rl, c := newTestLimiter(t, 1)
	rl.Allow("a")
	c.Advance(45 * time.Second)
	if got := rl.RetryAfter("a"); got != 15 {
		t.Errorf("RetryAfter = %d, want 15", got)
	}
	if got := rl.RetryAfter("unknown"); got != 0 {
		t.Errorf("RetryAfter(unknown) = %d, want 0", got)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, c := newTestLimiter(t, 10)
	rl.Allow("a")
	c.Advance(11 * time.Minute)
	rl.Allow("b")

	if removed := rl.CleanupStaleEntries(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients = %d, want 1", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "1.2.3.4" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}
