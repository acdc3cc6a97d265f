package user

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
) {
	users := r.Group("/users", auth)
	{
		users.GET("", middleware.RequireCapability(rbacService, rbac.ResourceUser, rbac.ActionList), handler.GetAll)
	}

	profile := r.Group("/profile", auth)
	{
		profile.PUT("", handler.UpdateProfile)
	}
}
