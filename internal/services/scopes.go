package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisibleTo limits bookings to those the user requested or that target a
// property the user owns.
func VisibleTo(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.student_id = ? OR bookings.property_id IN (SELECT id FROM properties WHERE landlord_id = ?)",
			userID, userID)
	}
}

// OwnedBy limits properties to one landlord.
func OwnedBy(landlordID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("landlord_id = ?", landlordID)
	}
}

// Available limits properties to listings open for booking.
func Available(db *gorm.DB) *gorm.DB {
	return db.Where("is_available = ?", true)
}
