package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Uptime      float64           `json:"uptime"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks"`
}

// healthHandler reports process uptime and dependency reachability. A failed
// dependency turns the response into 503.
func healthHandler(infra *Infra, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:      "OK",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Uptime:      time.Since(startedAt).Seconds(),
			Environment: infra.Config.Env,
			Checks:      map[string]string{},
		}
		status := http.StatusOK

		if infra.SQLDB != nil {
			resp.Checks["database"] = "up"
			if err := infra.SQLDB.PingContext(ctx); err != nil {
				resp.Checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		if infra.Redis != nil {
			resp.Checks["redis"] = "up"
			if err := infra.Redis.Ping(ctx).Err(); err != nil {
				resp.Checks["redis"] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			resp.Status = "DEGRADED"
		}
		c.JSON(status, resp)
	}
}
