package services

import (
	"context"
	"fmt"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewReviewService(db *gorm.DB, filter *ContentFilter) *ReviewService {
	return &ReviewService{db: db, filter: filter}
}

// Create records one review per user and property.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, propertyID uint, req *dto.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if err := s.filter.Screen(req.Comment); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Property{}).Where("id = ?", propertyID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrPropertyNotFound
	}
	if err := db.Model(&models.Review{}).Where("user_id = ? AND property_id = ?", userID, propertyID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAlreadyReviewed
	}

	review := models.Review{PropertyID: propertyID, UserID: userID, Rating: req.Rating, Comment: req.Comment}
	if err := db.Omit(clause.Associations).Create(&review).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if err := db.Preload("User").First(&review, "id = ?", review.ID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}
