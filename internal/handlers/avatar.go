package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/services"
	apperrors "github.com/erhmprah/ebook/pkg/errors"
)

// AvatarHandler exposes the avatar pipeline over HTTP. The service is
// injected so tests can run it against a fake blob store.
type AvatarHandler struct {
	svc *services.AvatarService
}

func NewAvatarHandler(svc *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{svc: svc}
}

// GetAvatar returns the caller's current avatar info.
// GET /api/profile/avatar
func (h *AvatarHandler) GetAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	info, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to get avatar information")
		return
	}

	data := gin.H{
		"has_avatar":  info.HasAvatar,
		"avatar_urls": nil,
	}
	if info.HasAvatar {
		data["avatar_urls"] = info.AvatarURLs
		if info.IsGoogleAvatar {
			data["is_google_avatar"] = true
		}
		if info.UploadedAt != nil {
			data["uploaded_at"] = info.UploadedAt
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// UploadAvatar accepts a multipart image in the "avatar" field, derives
// the resized renditions, and replaces the caller's avatar.
// POST /api/profile/avatar
func (h *AvatarHandler) UploadAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": apperrors.ErrMissingFile.Message})
		return
	}
	defer file.Close()

	// Reject oversize files before reading them into memory.
	if header.Size > services.MaxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": apperrors.ErrFileTooLarge.Message})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarSize+1))
	if err != nil {
		respondError(c, err, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > services.MaxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": apperrors.ErrFileTooLarge.Message})
		return
	}

	in := services.UploadInput{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}

	result, err := h.svc.Upload(c.Request.Context(), userID, in, requestContext(c))
	if err != nil {
		respondError(c, err, "Failed to process uploaded image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Avatar uploaded successfully",
		"data":    result,
	})
}

// DeleteAvatar removes the caller's avatar. 404 when there is nothing to
// delete.
// DELETE /api/profile/avatar
func (h *AvatarHandler) DeleteAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, requestContext(c)); err != nil {
		respondError(c, err, "Failed to delete avatar")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Avatar deleted successfully"})
}
