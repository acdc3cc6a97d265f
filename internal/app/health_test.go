package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		redisErr   error
		wantStatus int
		wantRedis  string
	}{
		{"all up", nil, http.StatusOK, "up"},
		{"redis down", errors.New("connection refused"), http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer db.Close()
			sqlMock.ExpectPing()

			rdb, redisMock := redismock.NewClientMock()
			if tt.redisErr != nil {
				redisMock.ExpectPing().SetErr(tt.redisErr)
			} else {
				redisMock.ExpectPing().SetVal("PONG")
			}

			in := &Infra{Config: &config.Config{Env: "test"}, SQLDB: db, Redis: rdb}
			r := gin.New()
			r.GET("/health", healthHandler(in, time.Now().Add(-time.Minute)))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body healthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "up", body.Checks["database"])
			assert.Equal(t, tt.wantRedis, body.Checks["redis"])
			assert.Equal(t, "test", body.Environment)
			assert.GreaterOrEqual(t, body.Uptime, 60.0)
		})
	}
}
