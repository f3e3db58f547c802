package services

import (
	"context"

	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add is idempotent: favoriting twice keeps a single row.
func (s *FavoriteService) Add(ctx context.Context, userID uuid.UUID, propertyID uint) error {
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Property{}).Where("id = ?", propertyID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrPropertyNotFound
	}
	fav := models.Favorite{UserID: userID, PropertyID: propertyID}
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "property_id"}}, DoNothing: true}).
		Create(&fav).Error
}

func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, propertyID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{}).Error
}

// List returns the user's favorited properties, most recent first.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.Property, error) {
	db := s.db.WithContext(ctx)
	var ids []uint
	if err := db.Model(&models.Favorite{}).Where("user_id = ?", userID).
		Order("created_at DESC").Pluck("property_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Property{}, nil
	}

	var found []models.Property
	if err := withDetails(db).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Property, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// FavoritedSet returns which of propertyIDs the user has favorited. An
// anonymous user has none.
func (s *FavoriteService) FavoritedSet(ctx context.Context, userID uuid.UUID, propertyIDs []uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == uuid.Nil || len(propertyIDs) == 0 {
		return set, nil
	}
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND property_id IN ?", userID, propertyIDs).
		Pluck("property_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
