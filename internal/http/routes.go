package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Tracing("identity-service"))
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.RateLimit(), h.Register)
		auth.POST("/login", h.RateLimit(), h.Login)
		auth.GET("/verify", h.Verify)
		auth.POST("/resend-verification", h.RateLimit(), h.ResendVerification)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/change-password", h.ChangePassword)
		auth.DELETE("/account", h.DeleteAccount)
		auth.GET("/me", Auth(h.Engine), h.Me)

		auth.GET("/google", h.GoogleLogin)
		auth.GET("/google/callback", h.GoogleCallback)
	}

	return r
}
