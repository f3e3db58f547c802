// Package testutil provides an in-memory database and fixtures for package
// tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/campus-acc/campus-backend/internal/database"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/notify"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated private in-memory SQLite database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a profile. phone may be empty.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role, phone string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "!unusable"}
	if err := db.Omit(clause.Associations).Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	profile := models.Profile{UserID: user.ID, Role: role}
	if phone != "" {
		profile.PhoneNumber = &phone
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	user.Profile = profile
	return &user
}

// CreateProperty inserts an available listing.
func CreateProperty(t *testing.T, db *gorm.DB, landlordID uuid.UUID, title string, price float64) *models.Property {
	t.Helper()
	p := models.Property{
		LandlordID:       landlordID,
		Title:            title,
		PricePerMonth:    price,
		GenderPreference: models.GenderMixed,
		IsAvailable:      true,
		VisitorsAllowed:  true,
	}
	if err := db.Omit(clause.Associations).Create(&p).Error; err != nil {
		t.Fatalf("create property %s: %v", title, err)
	}
	return &p
}

// CreateRoom inserts an available room.
func CreateRoom(t *testing.T, db *gorm.DB, propertyID uint, label string) *models.Room {
	t.Helper()
	r := models.Room{PropertyID: propertyID, Label: label, Capacity: 1, IsAvailable: true}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("create room %s: %v", label, err)
	}
	return &r
}

// RecordingNotifier captures notifications instead of sending them.
type RecordingNotifier struct {
	mu    sync.Mutex
	sent  []notify.Notification
	Panic bool
}

func (r *RecordingNotifier) Notify(_ context.Context, n notify.Notification) {
	if r.Panic {
		panic("notifier exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *RecordingNotifier) Sent() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}
