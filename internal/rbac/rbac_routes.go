package rbac

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := r.Group("/rbac", auth)
	{
		group.GET("/capabilities", handler.Capabilities)
		group.POST("/enforce", handler.Enforce)
	}
}
