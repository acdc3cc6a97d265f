package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts /auth. authLimit guards the credential endpoints;
// auth resolves the session for me and logout.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, authLimit gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/register", authLimit, handler.Register)
		group.POST("/verify-otp", authLimit, handler.VerifyOTP)
		group.POST("/resend-otp", authLimit, handler.ResendOTP)
		group.POST("/forgot-password", authLimit, handler.ForgotPassword)
		group.POST("/reset-password", authLimit, handler.ResetPassword)
		group.POST("/login", authLimit, handler.Login)

		group.POST("/logout", auth, handler.Logout)
		group.GET("/me", auth, handler.Me)
	}
}
