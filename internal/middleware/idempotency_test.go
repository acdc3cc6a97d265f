package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idempotentRouter(t *testing.T, ttl time.Duration) (*gin.Engine, redismock.ClientMock, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock := redismock.NewClientMock()

	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(CtxUserID, "u1") })
	r.POST("/leave/requests", Idempotency(db, ttl), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return r, mock, &calls
}

func TestIdempotency_StoresFirstResponse(t *testing.T) {
	r, mock, calls := idempotentRouter(t, time.Hour)
	cacheKey := "idemp:/leave/requests:u1:key-1"

	stored, err := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: []byte(`{"success":true}`)})
	require.NoError(t, err)

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "1", idempotencyLockTTL).SetVal(true)
	mock.ExpectSet(cacheKey, string(stored), time.Hour).SetVal("OK")
	mock.ExpectDel(cacheKey + ":lock").SetVal(1)

	req := httptest.NewRequest(http.MethodPost, "/leave/requests", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	r, mock, calls := idempotentRouter(t, time.Hour)
	cacheKey := "idemp:/leave/requests:u1:key-1"

	stored, _ := json.Marshal(cachedResponse{Status: http.StatusCreated, Body: []byte(`{"success":true,"data":{"id":"x"}}`)})
	mock.ExpectGet(cacheKey).SetVal(string(stored))

	req := httptest.NewRequest(http.MethodPost, "/leave/requests", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"x"}}`, w.Body.String())
	assert.Equal(t, 0, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_ConcurrentDuplicateConflicts(t *testing.T) {
	r, mock, calls := idempotentRouter(t, time.Hour)
	cacheKey := "idemp:/leave/requests:u1:key-1"

	mock.ExpectGet(cacheKey).RedisNil()
	mock.ExpectSetNX(cacheKey+":lock", "1", idempotencyLockTTL).SetVal(false)

	req := httptest.NewRequest(http.MethodPost, "/leave/requests", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	r, mock, calls := idempotentRouter(t, time.Hour)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leave/requests", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
