package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is unique per (user, property).
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_reviews_user_property,priority:2" json:"property_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_property,priority:1" json:"-"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Favorite marks a property on a user's wishlist.
type Favorite struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_property,priority:1" json:"user_id"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_property,priority:2;index" json:"property_id"`
	CreatedAt  time.Time `json:"created_at"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Property   Property  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
