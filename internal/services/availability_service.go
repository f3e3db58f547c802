package services

import (
	"context"
	"log/slog"

	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityService flips the property and room availability flags. The
// two flags are independent: pausing a property leaves its rooms untouched.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// ToggleProperty flips a property's flag for its owner.
func (s *AvailabilityService) ToggleProperty(ctx context.Context, propertyID uint, requesterID uuid.UUID) (*models.Property, error) {
	db := s.db.WithContext(ctx)
	var property models.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	if property.LandlordID != requesterID {
		return nil, ErrNotOwner
	}
	return s.flipProperty(db, &property)
}

// ToggleOwnedProperty looks the property up by id and landlord together, so
// a property owned by someone else is indistinguishable from a missing one.
func (s *AvailabilityService) ToggleOwnedProperty(ctx context.Context, propertyID uint, landlordID uuid.UUID) (*models.Property, error) {
	db := s.db.WithContext(ctx)
	var property models.Property
	if err := db.Scopes(OwnedBy(landlordID)).First(&property, propertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	return s.flipProperty(db, &property)
}

func (s *AvailabilityService) flipProperty(db *gorm.DB, property *models.Property) (*models.Property, error) {
	if err := db.Model(&models.Property{}).Where("id = ?", property.ID).
		Update("is_available", gorm.Expr("NOT is_available")).Error; err != nil {
		return nil, err
	}
	if err := db.First(property, property.ID).Error; err != nil {
		return nil, err
	}
	slog.Info("property availability toggled",
		"property_id", property.ID, "is_available", property.IsAvailable, "action", "availability.toggle_property")
	return property, nil
}

// ToggleRoom flips a room's flag for the owner of its property.
func (s *AvailabilityService) ToggleRoom(ctx context.Context, roomID uint, requesterID uuid.UUID) (*models.Room, error) {
	db := s.db.WithContext(ctx)
	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		return nil, notFoundOr(err, ErrRoomNotFound)
	}
	var property models.Property
	if err := db.Select("id", "landlord_id").First(&property, room.PropertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	if property.LandlordID != requesterID {
		return nil, ErrNotOwner
	}

	if err := db.Model(&models.Room{}).Where("id = ?", room.ID).
		Update("is_available", gorm.Expr("NOT is_available")).Error; err != nil {
		return nil, err
	}
	if err := db.First(&room, room.ID).Error; err != nil {
		return nil, err
	}
	slog.Info("room availability toggled",
		"property_id", room.PropertyID, "room_id", room.ID, "is_available", room.IsAvailable, "action", "availability.toggle_room")
	return &room, nil
}
