package department

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
	depts := r.Group("/departments", auth)
	{
		depts.GET("", middleware.RequireCapability(rbacService, rbac.ResourceDept, rbac.ActionRead), handler.GetAll)
		depts.POST("", middleware.RequireCapability(rbacService, rbac.ResourceDept, rbac.ActionManage), handler.Create)
		depts.PUT("/:id", middleware.RequireCapability(rbacService, rbac.ResourceDept, rbac.ActionManage), handler.Update)
	}
}
