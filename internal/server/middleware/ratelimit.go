package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/agentstation/rankmap/internal/server/response"
)

// visitorTTL is how long an idle client keeps its token bucket.
const visitorTTL = 10 * time.Minute

// RateLimiter implements token bucket rate limiting per client IP. Buckets are
// golang.org/x/time/rate limiters held in a go-cache so idle clients expire.
type RateLimiter struct {
	visitors *gocache.Cache
	limit    rate.Limit
	burst    int
	logger   *zerolog.Logger
	onLimit  func()
}

// NewRateLimiter creates a new rate limiter.
// perMinute is the sustained request rate per IP and also the burst size.
// A non-positive value rejects every request.
func NewRateLimiter(perMinute int, logger *zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		visitors: gocache.New(visitorTTL, visitorTTL/2),
		logger:   logger,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = perMinute
	}
	return rl
}

// OnLimit registers a callback invoked for every rejected request.
func (rl *RateLimiter) OnLimit(fn func()) *RateLimiter {
	rl.onLimit = fn
	return rl
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := rl.visitors.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rl.limit, rl.burst)
	if err := rl.visitors.Add(ip, lim, gocache.DefaultExpiration); err != nil {
		// Another request created the bucket first.
		if v, ok := rl.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (rl *RateLimiter) allow(ip string) bool {
	return rl.limiter(ip).Allow()
}

// RateLimit middleware limits requests per IP address.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !rl.allow(ip) {
				rl.logger.Warn().
					Str("ip", ip).
					Str("path", r.URL.Path).
					Msg("Rate limit exceeded")
				if rl.onLimit != nil {
					rl.onLimit()
				}

				w.Header().Set("Retry-After", "60")
				response.RateLimited(w, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the remote host.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
