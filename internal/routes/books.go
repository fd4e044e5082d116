package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/handlers"
	"github.com/erhmprah/ebook/internal/middleware"
)

func RegisterBookRoutes(r gin.IRouter, books *handlers.BookHandler, pdf *handlers.PDFHandler) {
	b := r.Group("/books")
	b.Use(middleware.OptionalAuthMiddleware())
	{
		b.GET("", books.ListBooks)
		b.GET("/category", books.FetchByCategory)
		b.GET("/details/:id", books.BookDetails)
	}

	r.GET("/category/stats", middleware.OptionalAuthMiddleware(), books.CategoryStats)

	// PDF delivery requires a signed-in reader.
	r.GET("/pdf/:filename", middleware.AuthMiddleware(), pdf.ServePDF)
}
