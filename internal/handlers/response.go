package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erhmprah/ebook/internal/services"
	apperrors "github.com/erhmprah/ebook/pkg/errors"
	"github.com/erhmprah/ebook/pkg/logger"
)

// currentUserID reads the user id set by the auth middleware. Empty means
// unauthenticated.
func currentUserID(c *gin.Context) string {
	if v, ok := c.Get("userId"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func requestContext(c *gin.Context) *services.RequestContext {
	return &services.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// respondError maps a service error onto the JSON envelope. AppErrors keep
// their status and message; anything else becomes a 500 with the fallback
// message, with the original detail included only outside release mode.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, gin.H{"success": false, "message": appErr.Message})
		return
	}

	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")

	body := gin.H{"success": false, "message": fallback}
	if gin.Mode() != gin.ReleaseMode {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": apperrors.ErrUnauthenticated.Message,
	})
}
