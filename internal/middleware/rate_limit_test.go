package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	keys   []string
	result ratelimit.Result
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (ratelimit.Result, error) {
	f.keys = append(f.keys, key)
	res := f.result
	res.Limit = limit
	return res, nil
}

type countingObserver struct{ presets []string }

func (o *countingObserver) RateLimited(preset string) { o.presets = append(o.presets, preset) }

func TestRateLimit_AllowedSetsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &fakeLimiter{result: ratelimit.Result{Allowed: true, Remaining: 99, ResetAt: time.Now().Add(15 * time.Minute)}}

	r := gin.New()
	r.GET("/x", RateLimit(limiter, APIPreset(100, 15*time.Minute), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "99", w.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, []string{"api:10.1.2.3"}, limiter.keys)
}

func TestRateLimit_DeniedReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &fakeLimiter{result: ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(60 * time.Second)}}
	observer := &countingObserver{}

	var handlerBody string
	r := gin.New()
	r.POST("/login", RateLimit(limiter, AuthPreset(5, 15*time.Minute), observer), func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		handlerBody = string(b)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":" Ana@Example.com ","password":"x"}`))
	req.RemoteAddr = "10.1.2.3:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, 60, env.RetryAfter)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, []string{"auth:10.1.2.3:ana@example.com"}, limiter.keys)
	assert.Equal(t, []string{"auth"}, observer.presets)
	assert.Empty(t, handlerBody)
}

func TestAuthPreset_RestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := &fakeLimiter{result: ratelimit.Result{Allowed: true, Remaining: 4, ResetAt: time.Now().Add(time.Minute)}}

	var handlerBody string
	r := gin.New()
	r.POST("/login", RateLimit(limiter, AuthPreset(5, time.Minute), nil), func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		handlerBody = string(b)
	})

	body := `{"email":"ana@example.com"}`
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body)))

	assert.Equal(t, body, handlerBody)
}
