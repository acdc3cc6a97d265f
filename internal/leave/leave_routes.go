package leave

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /leave. idempotency guards request creation against
// client retries.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
) {
	canRead := middleware.RequireCapability(rbacService, rbac.ResourceLeave, rbac.ActionRead)
	canApprove := middleware.RequireCapability(rbacService, rbac.ResourceLeave, rbac.ActionApprove)

	leave := r.Group("/leave", auth)
	{
		leave.POST("/requests",
			middleware.RequireCapability(rbacService, rbac.ResourceLeave, rbac.ActionCreate,
				"Managers cannot create leave requests. Only employees can submit leave requests."),
			idempotency,
			handler.Create,
		)
		leave.GET("/requests", canRead, handler.ListMine)
		leave.GET("/balances", canRead, handler.GetBalances)
		leave.GET("/history", canRead, handler.History)
		leave.GET("/managers",
			middleware.RequireCapability(rbacService, rbac.ResourceLeave, rbac.ActionManagers,
				"Only employees can access manager list"),
			handler.ListApprovers,
		)

		leave.GET("/approvals", canApprove, handler.ListPending)
		leave.POST("/approvals/:id/approve", canApprove, handler.Approve)
		leave.POST("/approvals/:id/reject", canApprove, handler.Reject)
	}
}
