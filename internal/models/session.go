package models

import (
	"time"
)

type UserSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index;size:255;not null" json:"user_id"`
	SessionToken string    `gorm:"index;size:255;not null" json:"session_token"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	DeviceInfo   string    `gorm:"size:255" json:"device_info"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// MaskedToken returns an abbreviated token safe to show in the sessions UI.
func (s UserSession) MaskedToken() string {
	t := s.SessionToken
	if len(t) <= 12 {
		return t
	}
	return t[:8] + "..." + t[len(t)-4:]
}
