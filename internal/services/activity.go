package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/erhmprah/ebook/internal/models"
	"github.com/erhmprah/ebook/pkg/logger"
)

// RequestContext carries the request metadata recorded alongside an
// activity entry. Nil is fine when no HTTP request is in play.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// ActivitySink is a one-way audit trail. Record never returns an error:
// losing an audit entry must not fail the operation being audited.
type ActivitySink interface {
	Record(userID string, typ models.ActivityType, description string, rc *RequestContext)
}

// ActivityLog writes audit entries to the user_activity_log table.
type ActivityLog struct {
	db *gorm.DB
}

func NewActivityLog(db *gorm.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

func (l *ActivityLog) Record(userID string, typ models.ActivityType, description string, rc *RequestContext) {
	entry := models.ActivityLog{
		UserID:      userID,
		Type:        typ,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if rc != nil {
		entry.IPAddress = rc.IPAddress
		entry.UserAgent = rc.UserAgent
	}

	if err := l.db.Create(&entry).Error; err != nil {
		logger.Warn().Err(err).
			Str("user_id", userID).
			Str("activity_type", string(typ)).
			Msg("Failed to log activity")
	}
}
