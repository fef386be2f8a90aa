package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/identity-api/internal"
	"golang.org/x/time/rate"
)

const (
	bucketTTL     = 5 * time.Minute
	sweepInterval = time.Minute
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a token bucket per client IP. Idle buckets are swept on
// the request path.
type RateLimiter struct {
	burst     int
	perSecond int

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(burst, perSecond int) *RateLimiter {
	return &RateLimiter{
		burst:     burst,
		perSecond: perSecond,
		buckets:   make(map[string]*bucket),
		now:       time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		for k, b := range rl.buckets {
			if now.Sub(b.seen) > bucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rl.perSecond), rl.burst)}
		rl.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", "1")
			writeError(w, internal.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys buckets on the connection address. Forwarding headers are
// client controlled; deployments behind a proxy rewrite RemoteAddr with
// chi's RealIP before this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
