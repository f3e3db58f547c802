package services

import (
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// purgeProperties deletes properties and everything that references them.
// It must run inside a transaction.
func purgeProperties(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	steps := []interface{}{
		&models.PropertyImage{},
		&models.Booking{},
		&models.Room{},
		&models.Review{},
		&models.Report{},
		&models.Favorite{},
	}
	for _, m := range steps {
		if err := tx.Where("property_id IN ?", ids).Delete(m).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", ids).Delete(&models.Property{}).Error
}

// purgeUser deletes a user, the properties they own and every row that
// references either. It must run inside a transaction.
func purgeUser(tx *gorm.DB, userID uuid.UUID) error {
	var owned []uint
	if err := tx.Model(&models.Property{}).Scopes(OwnedBy(userID)).Pluck("id", &owned).Error; err != nil {
		return err
	}
	if err := purgeProperties(tx, owned); err != nil {
		return err
	}

	steps := []struct {
		query string
		model interface{}
	}{
		{"student_id = ?", &models.Booking{}},
		{"user_id = ?", &models.Review{}},
		{"reporter_id = ?", &models.Report{}},
		{"user_id = ?", &models.Favorite{}},
		{"user_id = ?", &models.RefreshToken{}},
		{"user_id = ?", &models.Profile{}},
	}
	for _, step := range steps {
		if err := tx.Where(step.query, userID).Delete(step.model).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.User{}, "id = ?", userID).Error
}
