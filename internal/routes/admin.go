package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/handlers"
	"github.com/erhmprah/ebook/internal/middleware"
)

func RegisterAdminRoutes(r gin.IRouter, uploads *handlers.UploadHandler) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/books", middleware.UploadRateLimit(), uploads.InsertBook)
	}
}
