package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()

	for i := range 5 {
		res := l.Allow("alice")
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Limit != 5 {
			t.Errorf("Limit = %d, want 5", res.Limit)
		}
	}
	res := l.Allow("alice")
	if res.Allowed {
		t.Fatal("6th request should be limited")
	}
	if res.RetryAfter < time.Second {
		t.Errorf("RetryAfter = %v, want >= 1s", res.RetryAfter)
	}
	if !l.Allow("bob").Allowed {
		t.Error("keys must not share buckets")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := NewLimiter(60, time.Minute, 1)
	defer l.Close()
	now := time.Now()
	l.now = func() time.Time { return now }

	if !l.Allow("k").Allowed {
		t.Fatal("first request denied")
	}
	if l.Allow("k").Allowed {
		t.Fatal("burst of 1 exceeded")
	}
	now = now.Add(time.Second)
	if !l.Allow("k").Allowed {
		t.Error("bucket did not refill after one second")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(11 * time.Minute)
	l.Allow("fresh")
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["old"]; ok {
		t.Error("idle bucket kept")
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Error("active bucket dropped")
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(1, time.Minute, 1)
	defer l.Close()

	h := Middleware(l, func(*http.Request) string { return "k" }, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first: %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") != "1" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("headers = %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second: %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
}
