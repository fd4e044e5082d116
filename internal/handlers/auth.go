package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/services"
	"github.com/erhmprah/ebook/pkg/utils"
)

type AuthHandler struct {
	activity services.ActivitySink
}

func NewAuthHandler(activity services.ActivitySink) *AuthHandler {
	return &AuthHandler{activity: activity}
}

// Register creates a profile with default settings.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid registration data: " + err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.UserProfile
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	profile := models.UserProfile{
		UserID:       utils.GenerateID(),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		PasswordHash: string(hash),
		AccountType:  models.AccountEmail,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(profile.UserID)
		return tx.Create(&settings).Error
	})
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"data":    gin.H{"user_id": profile.UserID},
	})
}

// Login verifies credentials, issues a JWT, and opens a session row.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var profile models.UserProfile
	if err := database.DB.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Account does not exist. Sign up to create an account"})
			return
		}
		respondError(c, err, "Failed to log in")
		return
	}

	if profile.PasswordHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "This account uses Google sign-in"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(profile.UserID)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	now := time.Now()
	database.DB.Model(&profile).Update("last_login", now)

	session := models.UserSession{
		UserID:       profile.UserID,
		SessionToken: utils.GenerateID(),
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		IsActive:     true,
		LastAccessed: now,
		ExpiresAt:    now.Add(sessionLifetime),
	}
	if err := database.DB.Create(&session).Error; err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	h.activity.Record(profile.UserID, models.ActivityLogin, "Logged in", requestContext(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"data": gin.H{
			"token":         token,
			"session_token": session.SessionToken,
			"user": gin.H{
				"user_id":      profile.UserID,
				"full_name":    profile.FullName,
				"email":        profile.Email,
				"account_type": profile.AccountType,
			},
		},
	})
}

// Logout revokes the caller's JWT and deactivates the presented session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	if v, ok := c.Get("claims"); ok {
		if claims, ok := v.(*utils.Claims); ok && claims.ExpiresAt != nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				if err := database.BlacklistToken(claims.GetJTI(), ttl); err != nil {
					respondError(c, err, "Failed to log out")
					return
				}
			}
		}
	}

	if token := currentSessionToken(c); token != "" {
		database.DB.Model(&models.UserSession{}).
			Where("user_id = ? AND session_token = ?", userID, token).
			Update("is_active", false)
	}

	h.activity.Record(userID, models.ActivityLogout, "Logged out", requestContext(c))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
