package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRateLimiter_Allow(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(2, time.Hour)
	defer rl.Stop()

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are independent")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	ok, _ := rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		ok, _ := rl.Allow("a")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()
	r := okRouter(RateLimit(rl))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")

	// another journal from the same address has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(JournalHeaderKey, "11111111-1111-1111-1111-111111111111")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
