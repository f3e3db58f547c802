package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unusablePasswordPrefix marks credentials that can never match a bcrypt
// comparison.
const unusablePasswordPrefix = "!"

// IdentityService owns the single canonical identity per person across the
// web app and the WhatsApp bot.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// FindByPhone returns the identity bound to phone, or ErrUserNotFound.
func (s *IdentityService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrUserNotFound
	}
	return s.findByPhone(s.db.WithContext(ctx), normalized)
}

func (s *IdentityService) findByPhone(db *gorm.DB, normalized string) (*models.User, error) {
	var profile models.Profile
	if err := db.Where("phone_number = ?", normalized).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return s.loadUser(db, profile.UserID)
}

func (s *IdentityService) loadUser(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return &user, nil
}

// GetUser loads a user with its profile.
func (s *IdentityService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.loadUser(s.db.WithContext(ctx), id)
}

// ResolveOrCreateForPhone returns the identity bound to phone, creating a
// shadow student identity when none exists. A concurrent creation for the
// same phone surfaces as a unique violation and is resolved by re-reading.
func (s *IdentityService) ResolveOrCreateForPhone(ctx context.Context, phone string) (*models.User, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return nil, newError(ErrInvalid, "phone number is required")
	}

	db := s.db.WithContext(ctx)
	if user, err := s.findByPhone(db, normalized); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Username: normalized,
		Password: unusablePasswordPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Shadow:   true,
		Profile: models.Profile{
			Role:        models.RoleStudent,
			PhoneNumber: &normalized,
		},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return createWithProfile(tx, user)
	})
	if err == nil {
		slog.Info("shadow identity created", "user_id", user.ID.String(), "action", "identity.shadow_create")
		return user, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("failed to create shadow identity: %w", err)
	}

	existing, ferr := s.findByPhone(db, normalized)
	if ferr == nil {
		return existing, nil
	}
	// The username may be held by an account that never stored this phone.
	var byName models.User
	if err := db.Preload("Profile").Where("username = ?", normalized).First(&byName).Error; err == nil {
		return &byName, nil
	}
	return nil, fmt.Errorf("failed to resolve identity after conflict: %w", err)
}

// createWithProfile inserts the user and its profile in tx.
func createWithProfile(tx *gorm.DB, user *models.User) error {
	profile := user.Profile
	if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
		return err
	}
	profile.UserID = user.ID
	if err := tx.Create(&profile).Error; err != nil {
		return err
	}
	user.Profile = profile
	return nil
}

// RegisterOrUpgrade creates a self-service account, or upgrades in place the
// shadow identity the bot created for the supplied phone so its bookings stay
// attached.
func (s *IdentityService) RegisterOrUpgrade(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	role := models.DefaultRole
	if strings.TrimSpace(req.Role) != "" {
		r, ok := models.ParseRole(req.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = r
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, newError(ErrInvalid, "username is required")
	}
	phone := NormalizePhone(req.PhoneNumber)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var userID uuid.UUID
	upgraded := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shadow *models.User
		if phone != "" {
			var u models.User
			err := tx.Where("username = ? AND shadow = ?", phone, true).First(&u).Error
			switch {
			case err == nil:
				shadow = &u
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		clash := tx.Model(&models.User{}).Where("username = ?", username)
		if shadow != nil {
			clash = clash.Where("id <> ?", shadow.ID)
		}
		var n int64
		if err := clash.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}

		if phone != "" {
			owner := tx.Model(&models.Profile{}).Where("phone_number = ?", phone)
			if shadow != nil {
				owner = owner.Where("user_id <> ?", shadow.ID)
			}
			if err := owner.Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrPhoneTaken
			}
		}

		if shadow != nil {
			if err := tx.Model(shadow).Updates(map[string]interface{}{
				"username": username,
				"email":    req.Email,
				"password": string(hash),
				"shadow":   false,
			}).Error; err != nil {
				return err
			}
			userID = shadow.ID
			upgraded = true
		} else {
			user := &models.User{
				Username: username,
				Email:    req.Email,
				Password: string(hash),
				Profile:  models.Profile{Role: role},
			}
			if err := createWithProfile(tx, user); err != nil {
				return err
			}
			userID = user.ID
		}

		updates := map[string]interface{}{"role": role}
		if phone != "" {
			updates["phone_number"] = phone
		}
		switch role {
		case models.RoleStudent:
			updates["program"] = req.Program
			updates["year_of_study"] = req.YearOfStudy
		case models.RoleLandlord:
			updates["company_name"] = req.CompanyName
			updates["bio"] = req.Bio
		}
		return tx.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(updates).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if upgraded {
		slog.Info("shadow identity upgraded", "user_id", userID.String(), "action", "identity.upgrade")
	}
	return s.loadUser(s.db.WithContext(ctx), userID)
}

// UpdateProfile applies a partial profile update. Role-specific fields are
// only written for the role that owns them.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := map[string]interface{}{}
	if req.PhoneNumber != nil {
		if phone := NormalizePhone(*req.PhoneNumber); phone == "" {
			profile["phone_number"] = nil
		} else {
			profile["phone_number"] = phone
		}
	}
	if req.ProfilePicture != nil {
		profile["profile_picture"] = *req.ProfilePicture
	}
	switch user.Profile.Role {
	case models.RoleStudent:
		if req.Program != nil {
			profile["program"] = *req.Program
		}
		if req.YearOfStudy != nil {
			profile["year_of_study"] = *req.YearOfStudy
		}
	case models.RoleLandlord:
		if req.Bio != nil {
			profile["bio"] = *req.Bio
		}
		if req.CompanyName != nil {
			profile["company_name"] = *req.CompanyName
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Email != nil {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("email", *req.Email).Error; err != nil {
				return err
			}
		}
		if len(profile) == 0 {
			return nil
		}
		return tx.Model(&models.Profile{}).Where("user_id = ?", userID).Updates(profile).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}
