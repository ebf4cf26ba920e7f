// Package ratelimit implements per-key token bucket rate limiting for HTTP
// handlers.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int // requests per window
	Remaining  int
	ResetAt    time.Time // when the bucket is full again
	RetryAfter time.Duration
}

// Limiter keeps one token bucket per key. Buckets idle for longer than
// the idle period are dropped.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     rate.Limit
	requests int
	burst    int
	idle     time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows requests per window with the given burst.
func NewLimiter(requests int, window time.Duration, burst int) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst <= 0 {
		burst = 1
	}
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		rate:     rate.Limit(float64(requests) / window.Seconds()),
		requests: requests,
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow takes a token from key's bucket if one is available.
func (l *Limiter) Allow(key string) Result {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	res := Result{
		Allowed:   allowed,
		Limit:     l.requests,
		Remaining: max(int(tokens), 0),
		ResetAt:   now.Add(time.Duration((float64(l.burst) - tokens) / float64(l.rate) * float64(time.Second))),
	}
	if !allowed {
		res.RetryAfter = max(time.Duration((1-tokens)/float64(l.rate)*float64(time.Second)), time.Second)
	}
	return res
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	threshold := l.now().Add(-l.idle)
	for key, b := range l.buckets {
		if b.lastSeen.Before(threshold) {
			delete(l.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// WriteHeaders sets the X-RateLimit-* headers, plus Retry-After when the
// request was rejected.
func WriteHeaders(w http.ResponseWriter, res Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
	if !res.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
	}
}

// Middleware limits requests by the key returned from keyFn. Rejected
// requests are answered by reject.
func Middleware(l *Limiter, keyFn func(*http.Request) string, reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}
			res := l.Allow(keyFn(r))
			WriteHeaders(w, res)
			if !res.Allowed {
				reject(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
