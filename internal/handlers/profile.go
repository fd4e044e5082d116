package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/database"
	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/internal/services"
	"github.com/erhmprah/ebook/pkg/utils"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

type ProfileHandler struct {
	activity services.ActivitySink
}

func NewProfileHandler(activity services.ActivitySink) *ProfileHandler {
	return &ProfileHandler{activity: activity}
}

// GetProfile returns the caller's profile together with their settings,
// falling back to defaults when no settings row exists yet.
// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	var profile models.UserProfile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Profile not found"})
			return
		}
		respondError(c, err, "Failed to retrieve profile")
		return
	}

	var settings models.UserSettings
	if err := database.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		settings = models.DefaultSettings(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"profile":  profile,
			"settings": settings,
		},
	})
}

// UpdateProfile changes the editable profile fields.
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	var input struct {
		FullName string `json:"full_name"`
		Bio      string `json:"bio"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	input.FullName = strings.TrimSpace(input.FullName)
	if input.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Full name is required"})
		return
	}
	if len(input.Bio) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Bio cannot exceed 500 characters"})
		return
	}
	if input.Phone != "" && !phonePattern.MatchString(strings.ReplaceAll(input.Phone, " ", "")) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid phone number format"})
		return
	}

	updates := map[string]interface{}{
		"full_name": utils.SanitizeHTML(input.FullName),
		"bio":       utils.SanitizeHTML(input.Bio),
		"phone":     input.Phone,
		"location":  input.Location,
	}
	result := database.DB.Model(&models.UserProfile{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		respondError(c, result.Error, "Failed to update profile")
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Profile not found"})
		return
	}

	h.activity.Record(userID, models.ActivityProfileUpdate, "Updated profile information", requestContext(c))

	var updated models.UserProfile
	database.DB.Where("user_id = ?", userID).First(&updated)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"data":    gin.H{"profile": updated},
	})
}

// UpdateSettings upserts the caller's preferences.
// PUT /api/profile/settings
func (h *ProfileHandler) UpdateSettings(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	var input struct {
		EmailNotifications      *bool   `json:"email_notifications"`
		PushNotifications       *bool   `json:"push_notifications"`
		MarketingCommunications *bool   `json:"marketing_communications"`
		ProfileVisibility       *string `json:"profile_visibility"`
		ReadingActivity         *bool   `json:"reading_activity"`
		Theme                   *string `json:"theme"`
		FontSize                *string `json:"font_size"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if input.ProfileVisibility != nil {
		switch *input.ProfileVisibility {
		case "public", "friends", "private":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile visibility"})
			return
		}
	}
	if input.FontSize != nil {
		switch *input.FontSize {
		case "small", "medium", "large", "extra-large":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid font size"})
			return
		}
	}

	var settings models.UserSettings
	if err := database.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		settings = models.DefaultSettings(userID)
	}

	if input.EmailNotifications != nil {
		settings.EmailNotifications = *input.EmailNotifications
	}
	if input.PushNotifications != nil {
		settings.PushNotifications = *input.PushNotifications
	}
	if input.MarketingCommunications != nil {
		settings.MarketingCommunications = *input.MarketingCommunications
	}
	if input.ProfileVisibility != nil {
		settings.ProfileVisibility = *input.ProfileVisibility
	}
	if input.ReadingActivity != nil {
		settings.ReadingActivity = *input.ReadingActivity
	}
	if input.Theme != nil {
		settings.Theme = *input.Theme
	}
	if input.FontSize != nil {
		settings.FontSize = *input.FontSize
	}

	if err := database.DB.Save(&settings).Error; err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}

	h.activity.Record(userID, models.ActivitySettingsChange, "Updated account settings", requestContext(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings updated successfully",
		"data":    gin.H{"settings": settings},
	})
}

// GetActivityLog returns the caller's recent activity, newest first.
// GET /api/profile/activity
func (h *ProfileHandler) GetActivityLog(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		respondUnauthenticated(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var entries []models.ActivityLog
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		respondError(c, err, "Failed to retrieve activity log")
		return
	}

	var total int64
	database.DB.Model(&models.ActivityLog{}).Where("user_id = ?", userID).Count(&total)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"activities": entries,
			"total":      total,
			"limit":      limit,
			"offset":     offset,
		},
	})
}
