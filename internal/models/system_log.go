package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SystemLog is an ERROR+ log record persisted for later inspection.
// Attributes without a dedicated column land in Extra.
type SystemLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Level      string         `gorm:"size:10;not null;index" json:"level"`
	Message    string         `gorm:"type:text" json:"message"`
	TraceID    string         `gorm:"size:36;index" json:"trace_id"`
	UserID     *string        `gorm:"size:36;index" json:"user_id"`
	PropertyID *uint          `json:"property_id"`
	BookingID  *uint          `json:"booking_id"`
	Action     string         `gorm:"size:100" json:"action"`
	Error      string         `gorm:"type:text" json:"error"`
	Extra      datatypes.JSON `gorm:"type:jsonb" json:"extra"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
