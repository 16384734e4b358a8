package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/garagebook/internal/auth"
)

// RealIP extracts the client's real IP address, preferring Cloudflare's
// CF-Connecting-IP header, then X-Forwarded-For, and falling back to RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the original client
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// window counts the hits one key made since its window opened.
type window struct {
	hits    int
	resetAt time.Time
}

// RateLimiter allows each key at most limit hits per fixed window. State is
// in memory and per process.
type RateLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records a hit for key. A denied hit also returns how long until the
// key's window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[key] = &window{hits: 1, resetAt: now.Add(rl.period)}
		return true, 0
	}
	if w.hits >= rl.limit {
		return false, w.resetAt.Sub(now)
	}
	w.hits++
	return true, 0
}

// Cleanup drops closed windows and reports how many it dropped.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	n := 0
	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
			n++
		}
	}
	return n
}

// ByOrganization keys requests by the caller's organization, falling back to
// the client IP for unauthenticated requests.
func ByOrganization(r *http.Request) string {
	if orgID := auth.OrganizationID(r.Context()); orgID != "" {
		return "org:" + orgID
	}
	return "ip:" + RealIP(r)
}

// RateLimit rejects requests whose key is over the limiter's budget with 429
// and a Retry-After in whole seconds.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.Allow(keyFunc(r))
			if !ok {
				secs := int((wait + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
