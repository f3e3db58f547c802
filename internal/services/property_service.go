package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PropertyService struct {
	db *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Landlord.Profile").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("rooms.id") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("property_images.id") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("reviews.created_at DESC") }).
		Preload("Reviews.User")
}

func (s *PropertyService) requireLandlord(db *gorm.DB, userID uuid.UUID) error {
	var profile models.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	switch profile.Role {
	case models.RoleLandlord:
		return nil
	case models.RoleStudent:
		return ErrLandlordOnly
	}
	return ErrLandlordOnly
}

// Create lists a new property for a landlord. New listings are available and
// allow visitors unless the request says otherwise.
func (s *PropertyService) Create(ctx context.Context, landlordID uuid.UUID, req *dto.CreatePropertyRequest) (*models.Property, error) {
	db := s.db.WithContext(ctx)
	if err := s.requireLandlord(db, landlordID); err != nil {
		return nil, err
	}

	gender := models.GenderMixed
	if req.GenderPreference != "" {
		gender = models.GenderPreference(req.GenderPreference)
		if !gender.IsValid() {
			return nil, newError(ErrInvalid, "gender_preference must be Mixed, Gents or Ladies")
		}
	}
	property := models.Property{
		LandlordID:       landlordID,
		Title:            req.Title,
		Description:      req.Description,
		PricePerMonth:    req.PricePerMonth,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		GenderPreference: gender,
		IsAvailable:      boolOr(req.IsAvailable, true),
		HasWifi:          req.HasWifi,
		HasBorehole:      req.HasBorehole,
		HasSolar:         req.HasSolar,
		Curfew:           req.Curfew,
		VisitorsAllowed:  boolOr(req.VisitorsAllowed, true),
		DepositAmount:    req.DepositAmount,
	}
	if err := db.Omit(clause.Associations).Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	slog.Info("property created", "property_id", property.ID, "user_id", landlordID.String(), "action", "property.create")
	return s.Get(ctx, property.ID)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// Update applies a partial update for the owning landlord.
func (s *PropertyService) Update(ctx context.Context, propertyID uint, requesterID uuid.UUID, req *dto.UpdatePropertyRequest) (*models.Property, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, propertyID, requesterID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PricePerMonth != nil {
		updates["price_per_month"] = *req.PricePerMonth
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.GenderPreference != nil {
		g := models.GenderPreference(*req.GenderPreference)
		if !g.IsValid() {
			return nil, newError(ErrInvalid, "gender_preference must be Mixed, Gents or Ladies")
		}
		updates["gender_preference"] = g
	}
	if req.HasWifi != nil {
		updates["has_wifi"] = *req.HasWifi
	}
	if req.HasBorehole != nil {
		updates["has_borehole"] = *req.HasBorehole
	}
	if req.HasSolar != nil {
		updates["has_solar"] = *req.HasSolar
	}
	if req.Curfew != nil {
		updates["curfew"] = *req.Curfew
	}
	if req.VisitorsAllowed != nil {
		updates["visitors_allowed"] = *req.VisitorsAllowed
	}
	if req.DepositAmount != nil {
		updates["deposit_amount"] = *req.DepositAmount
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Property{}).Where("id = ?", propertyID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update property: %w", err)
		}
	}
	return s.Get(ctx, propertyID)
}

// Delete removes the property with its rooms, images, bookings, reviews,
// reports and favorites in one transaction.
func (s *PropertyService) Delete(ctx context.Context, propertyID uint, requesterID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, propertyID, requesterID); err != nil {
		return err
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return purgeProperties(tx, []uint{propertyID})
	}); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	slog.Info("property deleted", "property_id", propertyID, "user_id", requesterID.String(), "action", "property.delete")
	return nil
}

func (s *PropertyService) owned(db *gorm.DB, propertyID uint, requesterID uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	if property.LandlordID != requesterID {
		return nil, ErrNotOwner
	}
	return &property, nil
}

func (s *PropertyService) Get(ctx context.Context, propertyID uint) (*models.Property, error) {
	var property models.Property
	if err := withDetails(s.db.WithContext(ctx)).First(&property, propertyID).Error; err != nil {
		return nil, notFoundOr(err, ErrPropertyNotFound)
	}
	return &property, nil
}

// Exists reports whether a property id is known.
func (s *PropertyService) Exists(ctx context.Context, propertyID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", propertyID).Count(&n).Error
	return n > 0, err
}

// List returns available properties, cheapest first, optionally capped by
// maxPrice.
func (s *PropertyService) List(ctx context.Context, maxPrice *float64) ([]models.Property, error) {
	q := withDetails(s.db.WithContext(ctx)).Scopes(Available)
	if maxPrice != nil {
		q = q.Where("price_per_month <= ?", *maxPrice)
	}
	var properties []models.Property
	if err := q.Order("price_per_month ASC").Order("id ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// WithinBudget returns the available properties priced at or under budget,
// cheapest first, with the total match count.
func (s *PropertyService) WithinBudget(ctx context.Context, budget float64, limit int) ([]models.Property, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Property{}).Scopes(Available).Where("price_per_month <= ?", budget)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var properties []models.Property
	if err := q.Order("price_per_month ASC").Order("id ASC").Limit(limit).Find(&properties).Error; err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// ListByLandlord returns every property the landlord owns, available or not.
func (s *PropertyService) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]models.Property, error) {
	var properties []models.Property
	if err := withDetails(s.db.WithContext(ctx)).Scopes(OwnedBy(landlordID)).
		Order("id ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// AddRoom adds an available room to an owned property.
func (s *PropertyService) AddRoom(ctx context.Context, propertyID uint, requesterID uuid.UUID, req *dto.CreateRoomRequest) (*models.Room, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, propertyID, requesterID); err != nil {
		return nil, err
	}
	capacity := req.Capacity
	if capacity < 1 {
		capacity = 1
	}
	room := models.Room{PropertyID: propertyID, Label: req.Label, Capacity: capacity, IsAvailable: true}
	if err := db.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &room, nil
}

// AddImage attaches an image URL to an owned property, optionally to one of
// its rooms.
func (s *PropertyService) AddImage(ctx context.Context, propertyID uint, requesterID uuid.UUID, req *dto.AddImageRequest) (*models.PropertyImage, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.owned(db, propertyID, requesterID); err != nil {
		return nil, err
	}
	if req.RoomID != nil {
		var room models.Room
		if err := db.First(&room, *req.RoomID).Error; err != nil {
			return nil, notFoundOr(err, ErrRoomNotFound)
		}
		if room.PropertyID != propertyID {
			return nil, ErrRoomMismatch
		}
	}
	image := models.PropertyImage{PropertyID: propertyID, RoomID: req.RoomID, URL: req.URL}
	if err := db.Create(&image).Error; err != nil {
		return nil, fmt.Errorf("failed to add image: %w", err)
	}
	return &image, nil
}
