package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	jwtutil "github.com/studytrack/studytrack-backend/pkg/jwt"
)

func TestThrottleAllowExhaustsBurst(t *testing.T) {
	throttle := NewThrottle(10, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, throttle.Allow("alice"), "request %d within burst should pass", i+1)
	}
	assert.False(t, throttle.Allow("alice"), "burst exhausted")
}

func TestThrottleKeysAreIndependent(t *testing.T) {
	throttle := NewThrottle(10, 1)

	assert.True(t, throttle.Allow("alice"))
	assert.False(t, throttle.Allow("alice"))
	assert.True(t, throttle.Allow("bob"))
}

func TestThrottleMiddlewareReturns429(t *testing.T) {
	throttle := NewThrottle(10, 1)
	handler := throttle.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/ai/dsa", nil)
		req = req.WithContext(SetUserInContext(req.Context(), &jwtutil.Claims{UserID: "user123"}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestThrottleMiddlewareFallsBackToRemoteAddr(t *testing.T) {
	throttle := NewThrottle(10, 1)
	handler := throttle.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/ai/dsa", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
