package rbac

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	enforceFn      func(req domain.EnforceRequest) (bool, error)
	capabilitiesFn func(role string) ([]string, error)
}

func (f *fakeService) Enforce(req domain.EnforceRequest) (bool, error) { return f.enforceFn(req) }
func (f *fakeService) Capabilities(role string) ([]string, error)      { return f.capabilitiesFn(role) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newRouter(h *Handler, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	})
	r.GET("/rbac/capabilities", h.Capabilities)
	r.POST("/rbac/enforce", h.Enforce)
	return r
}

func TestHandler_Enforce(t *testing.T) {
	var got domain.EnforceRequest
	h := NewHandler(&fakeService{enforceFn: func(req domain.EnforceRequest) (bool, error) {
		got = req
		return req.Resource == "leave" && req.Action == "approve", nil
	}})

	body, _ := json.Marshal(map[string]string{"resource": " leave ", "action": "approve"})
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	newRouter(h, domain.RoleManager).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.EnforceRequest{Role: domain.RoleManager, Resource: "leave", Action: "approve"}, got)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp domain.EnforceResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.True(t, resp.Allowed)
}

func TestHandler_Enforce_ValidationError(t *testing.T) {
	h := NewHandler(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBufferString(`{"resource":"leave"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	newRouter(h, domain.RoleEmployee).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestHandler_Capabilities(t *testing.T) {
	h := NewHandler(&fakeService{capabilitiesFn: func(role string) ([]string, error) {
		return []string{"leave:read"}, nil
	}})

	t.Run("returns role capabilities", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(h, domain.RoleHR).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/capabilities", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		var resp domain.CapabilitiesResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, domain.RoleHR, resp.Role)
		assert.Equal(t, []string{"leave:read"}, resp.Capabilities)
	})

	t.Run("missing role is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(h, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rbac/capabilities", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
