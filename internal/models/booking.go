package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

// bookingTransitions is the whole lifecycle. accepted and rejected are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingAccepted, BookingRejected},
	BookingAccepted: {},
	BookingRejected: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(bookingTransitions[s]) == 0
}

// Booking is a student's request for a property, optionally a specific room.
// No uniqueness is enforced on (property, student).
type Booking struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PropertyID uint           `gorm:"not null;index" json:"property"`
	Property   Property       `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
	RoomID     *uint          `gorm:"index" json:"room"`
	Room       *Room          `gorm:"foreignKey:RoomID;constraint:OnDelete:SET NULL" json:"-"`
	StudentID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"student"`
	Student    User           `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	MoveInDate datatypes.Date `gorm:"not null" json:"move_in_date"`
	Message    string         `gorm:"type:text" json:"message"`
	Status     BookingStatus  `gorm:"size:10;not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
