package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/services"
	"github.com/erhmprah/ebook/pkg/utils"
)

const sessionLifetime = 30 * 24 * time.Hour

type SessionHandler struct {
	activity services.ActivitySink
}

func NewSessionHandler(activity services.ActivitySink) *SessionHandler {
	return &SessionHandler{activity: activity}
}

// currentSessionToken identifies the caller's own session so the list can
// mark it and terminate-all can spare it.
func currentSessionToken(c *gin.Context) string {
	return c.GetHeader("X-Session-Token")
}

type sessionView struct {
	ID           uint      `json:"id"`
	SessionToken string    `json:"session_token"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	DeviceInfo   string    `json:"device_info"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	ExpiresAt    time.Time `json:"expires_at"`
	Status       string    `json:"session_status"`
}

// GetActiveSessions lists the caller's live sessions with masked tokens.
// GET /api/profile/sessions
func (h *SessionHandler) GetActiveSessions(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	var sessions []models.UserSession
	if err := database.DB.
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Order("last_accessed DESC").
		Find(&sessions).Error; err != nil {
		respondError(c, err, "Failed to retrieve active sessions")
		return
	}

	current := currentSessionToken(c)
	views := make([]sessionView, 0, len(sessions))
	var currentID uint
	for _, s := range sessions {
		status := "active"
		if current != "" && s.SessionToken == current {
			status = "current"
			currentID = s.ID
		}
		views = append(views, sessionView{
			ID:           s.ID,
			SessionToken: s.MaskedToken(),
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			DeviceInfo:   s.DeviceInfo,
			CreatedAt:    s.CreatedAt,
			LastAccessed: s.LastAccessed,
			ExpiresAt:    s.ExpiresAt,
			Status:       status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"sessions":           views,
			"current_session_id": currentID,
			"total_sessions":     len(views),
		},
	})
}

// CreateSession registers a new device session for the caller.
// POST /api/profile/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	var input struct {
		DeviceInfo string `json:"device_info"`
	}
	_ = c.ShouldBindJSON(&input)

	session := models.UserSession{
		UserID:       userID,
		SessionToken: utils.GenerateID(),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		DeviceInfo:   input.DeviceInfo,
		IsActive:     true,
		LastAccessed: time.Now(),
		ExpiresAt:    time.Now().Add(sessionLifetime),
	}
	if err := database.DB.Create(&session).Error; err != nil {
		respondError(c, err, "Failed to create session")
		return
	}

	h.activity.Record(userID, models.ActivitySessionCreate, "Created new session", requestContext(c))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Session created successfully",
		"data": gin.H{
			"session_id":    session.ID,
			"session_token": session.SessionToken,
			"expires_at":    session.ExpiresAt,
		},
	})
}

// TerminateSession deactivates one of the caller's sessions.
// DELETE /api/profile/sessions/:sessionId
func (h *SessionHandler) TerminateSession(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}
	sessionID := c.Param("sessionId")

	var session models.UserSession
	if err := database.DB.
		Where("id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Session not found"})
			return
		}
		respondError(c, err, "Failed to terminate session")
		return
	}

	if err := database.DB.Model(&session).Update("is_active", false).Error; err != nil {
		respondError(c, err, "Failed to terminate session")
		return
	}

	h.activity.Record(userID, models.ActivitySessionTerminate, "Terminated a session", requestContext(c))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session terminated successfully"})
}

// TerminateAllOtherSessions deactivates every session except the caller's
// current one.
// DELETE /api/profile/sessions
func (h *SessionHandler) TerminateAllOtherSessions(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	query := database.DB.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if current := currentSessionToken(c); current != "" {
		query = query.Where("session_token <> ?", current)
	}

	result := query.Update("is_active", false)
	if result.Error != nil {
		respondError(c, result.Error, "Failed to terminate sessions")
		return
	}

	h.activity.Record(userID, models.ActivitySessionTerminateAll, "Terminated all other sessions", requestContext(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sessions terminated successfully",
		"data":    gin.H{"terminated": result.RowsAffected},
	})
}

// DeleteAccount removes the profile and everything hanging off it. This is
// the only path that deletes activity log rows.
// DELETE /api/profile/account
func (h *SessionHandler) DeleteAccount(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	// Audit before the cascade removes the trail.
	h.activity.Record(userID, models.ActivityAccountDelete, "Deleted account", requestContext(c))

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSettings{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.UserProfile{}).Error
	})
	if err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted successfully"})
}
