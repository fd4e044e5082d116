package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/handlers"
	"github.com/erhmprah/ebook/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter, h *handlers.AuthHandler) {
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), h.Logout)
	}
}
