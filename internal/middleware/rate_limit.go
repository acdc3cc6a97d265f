package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-leave/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RateLimitPreset struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
	Key     func(c *gin.Context) string
}

// APIPreset keys on client IP.
func APIPreset(limit int, window time.Duration) RateLimitPreset {
	return RateLimitPreset{
		Name:    "api",
		Limit:   limit,
		Window:  window,
		Message: "Too many requests from this IP, please try again later.",
		Key: func(c *gin.Context) string {
			return "api:" + c.ClientIP()
		},
	}
}

// AuthPreset keys on client IP plus the email in the JSON body, so one noisy
// address cannot lock out every user behind the same NAT.
func AuthPreset(limit int, window time.Duration) RateLimitPreset {
	return RateLimitPreset{
		Name:    "auth",
		Limit:   limit,
		Window:  window,
		Message: "Too many authentication attempts, please try again later.",
		Key: func(c *gin.Context) string {
			return "auth:" + c.ClientIP() + ":" + peekEmail(c)
		},
	}
}

// RateLimitObserver receives the preset name for every rejected request.
type RateLimitObserver interface {
	RateLimited(preset string)
}

func RateLimit(limiter ratelimit.Limiter, preset RateLimitPreset, observer RateLimitObserver) gin.HandlerFunc {
	log := zap.L().Named("middleware.ratelimit")

	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), preset.Key(c), preset.Limit, preset.Window)
		if err != nil {
			log.Warn("rate limiter error, allowing request", zap.String("preset", preset.Name), zap.Error(err))
			c.Next()
			return
		}

		resetIn := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
		if resetIn < 0 {
			resetIn = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(resetIn))

		if !res.Allowed {
			if observer != nil {
				observer.RateLimited(preset.Name)
			}
			c.Header("Retry-After", strconv.Itoa(resetIn))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":    false,
				"error":      preset.Message,
				"code":       "TOO_MANY_REQUESTS",
				"retryAfter": resetIn,
			})
			return
		}

		c.Next()
	}
}

func peekEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
