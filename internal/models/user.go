package models

import (
	"time"
)

type AccountType string

const (
	AccountGoogle AccountType = "google"
	AccountEmail  AccountType = "email"
	AccountAdmin  AccountType = "admin"
)

// UserProfile is the storefront's user record. AvatarURL holds either a
// JSON locator map or a bare external URL; see avatar.go for the codec.
type UserProfile struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	UserID       string      `gorm:"uniqueIndex;size:255;not null" json:"user_id"`
	FullName     string      `gorm:"size:255;not null" json:"full_name"`
	Email        string      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string      `gorm:"size:255" json:"-"`
	Bio          string      `json:"bio"`
	Phone        string      `gorm:"size:50" json:"phone"`
	Location     string      `gorm:"size:255" json:"location"`
	AvatarURL    string      `gorm:"column:avatar_url;size:2000" json:"avatar_url"`
	AccountType  AccountType `gorm:"size:20;default:'email'" json:"account_type"`
	LastLogin    *time.Time  `json:"last_login"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
