package middleware

import (
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Throttle is a per-user token-bucket limiter. AI generation gets one
// instance, AI regeneration a stricter one; both key on the authenticated
// user, falling back to the remote address.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewThrottle builds a limiter allowing perMinute requests per minute with
// the given burst per caller.
func NewThrottle(perMinute float64, burst int) *Throttle {
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perMinute / 60.0),
		burst:    burst,
	}
}

func (t *Throttle) limiterFor(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = limiter
	}
	return limiter
}

// Allow reports whether the caller identified by key may proceed.
func (t *Throttle) Allow(key string) bool {
	return t.limiterFor(key).Allow()
}

// Middleware rejects over-limit requests with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if claims := GetUserFromContext(r.Context()); claims != nil {
			key = claims.UserID
		}

		if !t.Allow(key) {
			logrus.WithField("key", key).Warn("Request throttled")
			http.Error(w, "Too many requests, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
