package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// ipLimiter counts requests per client IP over a fixed window. State
// lives in process memory, which matches the single-process deployment:
// there is no shared store to coordinate counters across instances.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*ipBucket
	limit   int
	window  time.Duration
}

type ipBucket struct {
	hits  int
	since time.Time
}

// allow records one request from ip and reports whether it is within
// the limit. A bucket older than the window resets.
func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok || now.Sub(b.since) > l.window {
		l.buckets[ip] = &ipBucket{hits: 1, since: now}
		return true
	}
	b.hits++
	return b.hits <= l.limit
}

// sweep drops buckets that have been idle for two windows so the map
// does not grow with every IP ever seen.
func (l *ipLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, b := range l.buckets {
		if now.Sub(b.since) > l.window*2 {
			delete(l.buckets, ip)
		}
	}
}

// RateLimit limits each client IP to limit requests per window and
// answers 429 past that. It guards the auth endpoints hardest: a
// brute-forced password hands the attacker the field-encryption key
// along with the account, so login attempts are worth slowing down.
func RateLimit(limit int, window time.Duration) echo.MiddlewareFunc {
	l := &ipLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   limit,
		window:  window,
	}

	go func() {
		for {
			time.Sleep(time.Minute)
			l.sweep(time.Now())
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP(), time.Now()) {
				return echo.NewHTTPError(http.StatusTooManyRequests,
					"too many requests, slow down")
			}
			return next(c)
		}
	}
}
