package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/handlers"
	"github.com/erhmprah/ebook/internal/middleware"
)

func RegisterProfileRoutes(r gin.IRouter, profile *handlers.ProfileHandler, avatar *handlers.AvatarHandler, sessions *handlers.SessionHandler) {
	p := r.Group("/profile")
	p.Use(middleware.AuthMiddleware())
	{
		p.GET("", profile.GetProfile)
		p.PUT("", profile.UpdateProfile)
		p.PUT("/settings", profile.UpdateSettings)
		p.GET("/activity", profile.GetActivityLog)

		p.GET("/avatar", avatar.GetAvatar)
		p.POST("/avatar", middleware.UploadRateLimit(), avatar.UploadAvatar)
		p.DELETE("/avatar", avatar.DeleteAvatar)

		p.GET("/sessions", sessions.GetActiveSessions)
		p.POST("/sessions", sessions.CreateSession)
		p.DELETE("/sessions/:sessionId", sessions.TerminateSession)
		p.DELETE("/sessions", sessions.TerminateAllOtherSessions)

		p.DELETE("/account", sessions.DeleteAccount)
	}
}
