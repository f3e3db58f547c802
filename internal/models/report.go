package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportReason string

const (
	ReasonFake          ReportReason = "fake"
	ReasonUnavailable   ReportReason = "unavailable"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonOther         ReportReason = "other"
)

func (r ReportReason) IsValid() bool {
	switch r {
	case ReasonFake, ReasonUnavailable, ReasonInappropriate, ReasonOther:
		return true
	default:
		return false
	}
}

// Report is a complaint against a listing. Filing one never changes the
// property; resolution is an admin flag only.
type Report struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	PropertyID  uint         `gorm:"not null;index" json:"property_id"`
	Reason      ReportReason `gorm:"size:20;not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	IsResolved  bool         `gorm:"not null;default:false;index" json:"is_resolved"`
	AdminNote   string       `gorm:"size:1000" json:"admin_note,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Reporter    User         `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Property    Property     `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
