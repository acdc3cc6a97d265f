package middleware

import (
	"net/http"

	"go-leave/internal/domain"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by rbac.Service.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

// RequireCapability lets the request through only if the caller's role holds
// resource:action. Must run after AuthMiddleware. denyMessage overrides the
// generic 403 message.
func RequireCapability(service RBACService, resource, action string, denyMessage ...string) gin.HandlerFunc {
	log := zap.L().Named("middleware.rbac")
	message := "Insufficient permissions"
	if len(denyMessage) > 0 && denyMessage[0] != "" {
		message = denyMessage[0]
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required", nil)
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			log.Error("enforce failed", zap.String("role", role), zap.Error(err))
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
			return
		}

		if !allowed {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", message, gin.H{
				"required": resource + ":" + action,
			})
			return
		}
		c.Next()
	}
}
