package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/storage"
	"github.com/erhmprah/ebook/pkg/utils"
)

// Book files are PDFs and can be large; covers share the avatar limit.
const (
	maxBookFileSize  = 50 << 20
	maxCoverFileSize = 5 << 20
)

type UploadHandler struct {
	store storage.BlobStore
}

func NewUploadHandler(store storage.BlobStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) storeFormFile(c *gin.Context, file *multipart.FileHeader, folder string, maxSize int64) (string, error) {
	if file.Size > maxSize {
		return "", fmt.Errorf("file %q exceeds the %d MB limit", file.Filename, maxSize>>20)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := fmt.Sprintf("%s/%s%s", folder, utils.GenerateID(), ext)
	return h.store.Put(c.Request.Context(), key, src, file.Size, file.Header.Get("Content-Type"))
}

// InsertBook creates a catalog entry from a multipart form with optional
// "image" (cover) and "book" (PDF) files.
// POST /api/admin/books
func (h *UploadHandler) InsertBook(c *gin.Context) {
	title := c.PostForm("title")
	author := c.PostForm("author")
	category := c.PostForm("category")
	if title == "" || author == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Title, author and category are required"})
		return
	}

	price, _ := strconv.ParseFloat(c.DefaultPostForm("price", "0"), 64)
	if price < 0 {
		price = 0
	}

	dateAdded := time.Now()
	if raw := c.PostForm("date"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			dateAdded = parsed
		}
	}

	var imageLocator, bookLocator string

	if file, err := c.FormFile("image"); err == nil {
		loc, err := h.storeFormFile(c, file, "covers", maxCoverFileSize)
		if err != nil {
			respondError(c, err, "Failed to store cover image")
			return
		}
		imageLocator = loc
	}

	if file, err := c.FormFile("book"); err == nil {
		if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Book file must be a PDF"})
			return
		}
		loc, err := h.storeFormFile(c, file, "books", maxBookFileSize)
		if err != nil {
			respondError(c, err, "Failed to store book file")
			return
		}
		bookLocator = loc
	}

	book := models.Book{
		Title:       title,
		Author:      author,
		Description: c.PostForm("description"),
		Category:    category,
		Excerpt:     c.PostForm("excerpt"),
		Class:       c.PostForm("class"),
		Image:       imageLocator,
		File:        bookLocator,
		Price:       price,
		DateAdded:   dateAdded,
	}
	if err := database.DB.Create(&book).Error; err != nil {
		respondError(c, err, "Failed to insert book")
		return
	}

	// The landing page cache is stale now.
	_ = database.CacheInvalidate("books:index:*")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Book inserted successfully",
		"data":    gin.H{"book": book},
	})
}
