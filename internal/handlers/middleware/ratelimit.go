package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AMICLONE1/powernetpro/internal/handlers/render"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window counter keyed by client address and route.
// State is in-process: with several server instances each counts on its own.
type RateLimiter struct {
	limit  int
	period time.Duration

	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow counts a hit for the key and reports whether it is within the limit
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.windows[key] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= rl.limit
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !rl.Allow(host + " " + r.Method + " " + r.URL.Path) {
				render.Error(w, render.CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
