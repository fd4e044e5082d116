package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/services"
	"github.com/erhmprah/ebook/pkg/utils"
)

const catalogPageSize = 10

type BookHandler struct {
	activity services.ActivitySink
}

func NewBookHandler(activity services.ActivitySink) *BookHandler {
	return &BookHandler{activity: activity}
}

// ListBooks returns a catalog page. The first page is redis-cached since
// it backs the storefront landing view.
// GET /api/books
func (h *BookHandler) ListBooks(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("books:index:%d", offset)
	if offset == 0 {
		var cached gin.H
		if err := database.CacheGet(cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var books []models.Book
	if err := database.DB.
		Order("date_added DESC").
		Limit(catalogPageSize).Offset(offset).
		Find(&books).Error; err != nil {
		respondError(c, err, "Failed to fetch books")
		return
	}

	var total int64
	database.DB.Model(&models.Book{}).Count(&total)

	body := gin.H{
		"success": true,
		"data": gin.H{
			"books":  books,
			"total":  total,
			"offset": offset,
			"limit":  catalogPageSize,
		},
	}

	if offset == 0 {
		// Losing the cache write is harmless.
		_ = database.CacheSet(cacheKey, body, 5*time.Minute)
	}

	c.JSON(http.StatusOK, body)
}

// FetchByCategory returns a page of books matching a category.
// GET /api/books/category?category=...&offset=...
func (h *BookHandler) FetchByCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Category is required"})
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	pattern := utils.SanitizeSearchQuery(category)

	var books []models.Book
	if err := database.DB.
		Where("category LIKE ?", pattern).
		Limit(catalogPageSize).Offset(offset).
		Find(&books).Error; err != nil {
		respondError(c, err, "Failed to fetch books")
		return
	}

	var total int64
	database.DB.Model(&models.Book{}).Where("category LIKE ?", pattern).Count(&total)

	if userID := currentUserID(c); userID != "" {
		h.activity.Record(userID, models.ActivityCategoryView, "Browsed category: "+category, requestContext(c))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"books":  books,
			"total":  total,
			"offset": offset,
			"limit":  catalogPageSize,
		},
	})
}

// BookDetails returns one book.
// GET /api/books/details/:id
func (h *BookHandler) BookDetails(c *gin.Context) {
	id := c.Param("id")

	var book models.Book
	if err := database.DB.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Book not found"})
			return
		}
		respondError(c, err, "Failed to fetch book details")
		return
	}

	if userID := currentUserID(c); userID != "" {
		h.activity.Record(userID, models.ActivityBookView, "Viewed book: "+book.Title, requestContext(c))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"book": book}})
}

// CategoryStats returns per-category book counts.
// GET /api/category/stats
func (h *BookHandler) CategoryStats(c *gin.Context) {
	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}

	var stats []categoryCount
	if err := database.DB.Model(&models.Book{}).
		Select("category, COUNT(id) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats).Error; err != nil {
		respondError(c, err, "Failed to fetch category stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"categories": stats}})
}
