package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"pgstay/pkg/logger"
)

// KeyExtractor derives the rate-limit bucket for a request. The default
// uses the authenticated identity when present and falls back to the
// caller's address.
type KeyExtractor func(r *http.Request) string

type ClientRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewClientRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *ClientRateLimiter {
	limiter := &ClientRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *ClientRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[key]
	rl.mu.RUnlock()

	valid := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		return false
	}

	valid = append(valid, now)

	rl.mu.Lock()
	rl.requests[key] = valid
	rl.mu.Unlock()

	return true
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func DefaultKeyExtractor(r *http.Request) string {
	if identity, ok := IdentityFrom(r.Context()); ok {
		return identity.ID
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
