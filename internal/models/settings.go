package models

import (
	"time"
)

type UserSettings struct {
	ID                      uint      `gorm:"primaryKey" json:"-"`
	UserID                  string    `gorm:"uniqueIndex;size:255;not null" json:"user_id"`
	EmailNotifications      bool      `gorm:"default:true" json:"email_notifications"`
	PushNotifications       bool      `gorm:"default:false" json:"push_notifications"`
	MarketingCommunications bool      `gorm:"default:false" json:"marketing_communications"`
	ProfileVisibility       string    `gorm:"size:20;default:'public'" json:"profile_visibility"` // public | friends | private
	ReadingActivity         bool      `gorm:"default:true" json:"reading_activity"`
	Theme                   string    `gorm:"size:50;default:'gradient'" json:"theme"`
	FontSize                string    `gorm:"size:20;default:'medium'" json:"font_size"` // small | medium | large | extra-large
	TwoFactorEnabled        bool      `gorm:"default:false" json:"two_factor_enabled"`
	SessionCount            int       `gorm:"default:0" json:"session_count"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultSettings returns the settings shape used before a user has
// persisted any preferences.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:             userID,
		EmailNotifications: true,
		ProfileVisibility:  "public",
		ReadingActivity:    true,
		Theme:              "gradient",
		FontSize:           "medium",
	}
}
