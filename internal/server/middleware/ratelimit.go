package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	limiterSweepInterval = 10 * time.Minute
	limiterIdleTimeout   = 30 * time.Minute
)

type keyedLimiter[K comparable] struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	limiters map[K]*entry
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// newKeyedLimiter starts a sweeper that drops idle entries until ctx is done.
func newKeyedLimiter[K comparable](ctx context.Context, requestsPerSecond float64, burst int) *keyedLimiter[K] {
	kl := &keyedLimiter[K]{
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
		limiters: make(map[K]*entry),
	}

	go func() {
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				kl.sweep(time.Now().Add(-limiterIdleTimeout))
			case <-ctx.Done():
				return
			}
		}
	}()

	return kl
}

func (kl *keyedLimiter[K]) allow(key K) bool {
	kl.mu.Lock()
	e, ok := kl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(kl.rps, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastAccess = time.Now()
	kl.mu.Unlock()

	return e.limiter.Allow()
}

func (kl *keyedLimiter[K]) sweep(cutoff time.Time) {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for k, e := range kl.limiters {
		if e.lastAccess.Before(cutoff) {
			delete(kl.limiters, k)
		}
	}
}

// RateLimitByIP applies per-IP rate limiting for unauthenticated endpoints
// (sign-in, sign-up, OAuth). It relies on chi's RealIP having rewritten
// r.RemoteAddr.
func RateLimitByIP(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	kl := newKeyedLimiter[string](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !kl.allow(clientIP(r)) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies per-user rate limiting to authenticated requests.
// Requests without a user in context pass through.
func RateLimit(ctx context.Context, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	kl := newKeyedLimiter[uuid.UUID](ctx, requestsPerSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if !kl.allow(userID) {
				tooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"title":"Too Many Requests","status":429,"detail":"rate limit exceeded"}`))
}
