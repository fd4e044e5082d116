package handlers

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/storage"
)

type PDFHandler struct {
	store storage.BlobStore
}

func NewPDFHandler(store storage.BlobStore) *PDFHandler {
	return &PDFHandler{store: store}
}

// ServePDF streams a purchased book's PDF inline.
// GET /api/pdf/:filename
func (h *PDFHandler) ServePDF(c *gin.Context) {
	filename := c.Param("filename")
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid file type"})
		return
	}

	// path.Base strips any traversal components from the client value.
	locator := "books/" + path.Base(filename)

	data, err := h.store.Get(c.Request.Context(), locator)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "PDF not found"})
			return
		}
		respondError(c, err, "Error serving PDF")
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "SAMEORIGIN")
	c.Data(http.StatusOK, "application/pdf", data)
}
