package models

import (
	"time"
)

type ActivityType string

const (
	ActivityLogin               ActivityType = "login"
	ActivityLogout              ActivityType = "logout"
	ActivityProfileUpdate       ActivityType = "profile_update"
	ActivitySettingsChange      ActivityType = "settings_change"
	ActivityAvatarUpload        ActivityType = "avatar_upload"
	ActivityAvatarDelete        ActivityType = "avatar_delete"
	ActivitySessionCreate       ActivityType = "session_create"
	ActivitySessionTerminate    ActivityType = "session_terminate"
	ActivitySessionTerminateAll ActivityType = "sessions_terminate_all"
	ActivityAccountDelete       ActivityType = "account_delete"
	ActivityBookView            ActivityType = "book_view"
	ActivityCategoryView        ActivityType = "category_view"
)

// ActivityLog is append-only. Rows are never updated and only removed by
// the account-deletion cascade.
type ActivityLog struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      string       `gorm:"index;size:255;not null" json:"user_id"`
	Type        ActivityType `gorm:"column:activity_type;type:text;index;not null" json:"activity_type"`
	Description string       `gorm:"column:activity_description" json:"activity_description"`
	IPAddress   string       `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string       `json:"user_agent,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "user_activity_log"
}
