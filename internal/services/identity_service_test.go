package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestResolveOrCreateForPhoneCreatesShadowStudent(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	user, err := svc.ResolveOrCreateForPhone(ctx, "whatsapp:+263771000001")
	if err != nil {
		t.Fatalf("ResolveOrCreateForPhone: %v", err)
	}
	if user.Username != "+263771000001" {
		t.Errorf("username = %q, want normalized phone", user.Username)
	}
	if !user.Shadow {
		t.Error("expected a shadow identity")
	}
	if user.Profile.Role != models.RoleStudent {
		t.Errorf("role = %q, want student", user.Profile.Role)
	}
	if user.Profile.Phone() != "+263771000001" {
		t.Errorf("profile phone = %q", user.Profile.Phone())
	}

	again, err := svc.ResolveOrCreateForPhone(ctx, "+263 771 000 001")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("second resolve returned %s, want %s", again.ID, user.ID)
	}
}

// TestResolveOrCreateForPhoneLosesRace inserts a rival identity right after
// the initial phone lookup misses, so the create hits the unique index and
// the conflict branch has to re-read.
func TestResolveOrCreateForPhoneLosesRace(t *testing.T) {
	tests := []struct {
		name       string
		rivalPhone bool
	}{
		{"rival holds phone", true},
		{"rival holds username only", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.OpenDB(t)
			svc := NewIdentityService(db)
			const phone = "+263773000003"

			var rival *models.User
			err := db.Callback().Query().After("gorm:query").Register("test:rival_insert", func(tx *gorm.DB) {
				if rival != nil || tx.Statement.Table != "profiles" || !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
					return
				}
				rivalPhone := ""
				if tt.rivalPhone {
					rivalPhone = phone
				}
				rival = testutil.CreateUser(t, db, phone, models.RoleStudent, rivalPhone)
			})
			if err != nil {
				t.Fatalf("register callback: %v", err)
			}

			user, err := svc.ResolveOrCreateForPhone(context.Background(), "whatsapp:"+phone)
			if err != nil {
				t.Fatalf("ResolveOrCreateForPhone: %v", err)
			}
			if rival == nil {
				t.Fatal("rival was never inserted")
			}
			if user.ID != rival.ID {
				t.Errorf("resolved %s, want rival %s", user.ID, rival.ID)
			}
			var n int64
			db.Model(&models.User{}).Where("username = ?", phone).Count(&n)
			if n != 1 {
				t.Errorf("identities for phone = %d, want 1", n)
			}
		})
	}
}

func TestResolveOrCreateForPhoneConcurrent(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()
	phone := "whatsapp:+263772000002"

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := svc.ResolveOrCreateForPhone(ctx, phone)
			errs[i] = err
			if u != nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
	}
	if ids[0] != ids[1] {
		t.Errorf("concurrent resolves returned different identities: %s, %s", ids[0], ids[1])
	}
	var n int64
	db.Model(&models.User{}).Where("username = ?", "+263772000002").Count(&n)
	if n != 1 {
		t.Errorf("identities for phone = %d, want 1", n)
	}
}

func TestFindByPhoneUnknown(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)

	_, err := svc.FindByPhone(context.Background(), "+263779999999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRegisterOrUpgradeMergesShadowIdentity(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	svc := NewIdentityService(db)
	bookings := NewBookingService(db, nil)

	landlord := testutil.CreateUser(t, db, "landlord", models.RoleLandlord, "")
	property := testutil.CreateProperty(t, db, landlord.ID, "Cottage", 80)

	shadow, err := svc.ResolveOrCreateForPhone(ctx, "whatsapp:+263773000003")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	booking, err := bookings.Create(ctx, CreateBookingInput{
		PropertyID: property.ID, StudentID: shadow.ID, MoveInDate: time.Now(), Message: "hi",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	user, err := svc.RegisterOrUpgrade(ctx, &dto.RegisterRequest{
		Username:    "tendai",
		Email:       "tendai@example.com",
		Password:    "supersecret",
		PhoneNumber: "+263 773 000 003",
		Program:     "Computer Science",
		YearOfStudy: "2",
	})
	if err != nil {
		t.Fatalf("RegisterOrUpgrade: %v", err)
	}
	if user.ID != shadow.ID {
		t.Fatalf("upgrade created a new identity %s, want %s", user.ID, shadow.ID)
	}
	if user.Shadow {
		t.Error("identity still marked shadow after upgrade")
	}
	if user.Username != "tendai" || user.Email != "tendai@example.com" {
		t.Errorf("user = %q/%q, want overwritten credentials", user.Username, user.Email)
	}
	if user.Profile.Program != "Computer Science" || user.Profile.YearOfStudy != "2" {
		t.Errorf("profile = %+v, want student attributes", user.Profile)
	}

	var count int64
	db.Model(&models.User{}).Where("username IN ?", []string{"tendai", "+263773000003"}).Count(&count)
	if count != 1 {
		t.Errorf("identity rows = %d, want 1", count)
	}

	got, err := bookings.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.StudentID != user.ID {
		t.Errorf("booking student = %s, want %s", got.StudentID, user.ID)
	}
}

func TestRegisterOrUpgradeCreatesLandlord(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)

	user, err := svc.RegisterOrUpgrade(context.Background(), &dto.RegisterRequest{
		Username:    "mrsmoyo",
		Password:    "supersecret",
		Role:        "landlord",
		PhoneNumber: "+263774000004",
		CompanyName: "Moyo Rentals",
		Bio:         "Ten years near campus",
		Program:     "ignored",
	})
	if err != nil {
		t.Fatalf("RegisterOrUpgrade: %v", err)
	}
	if user.Profile.Role != models.RoleLandlord {
		t.Errorf("role = %q, want landlord", user.Profile.Role)
	}
	if user.Profile.CompanyName != "Moyo Rentals" || user.Profile.Program != "" {
		t.Errorf("profile = %+v, want landlord attributes only", user.Profile)
	}
	if user.Profile.Phone() != "+263774000004" {
		t.Errorf("phone = %q", user.Profile.Phone())
	}
}

func TestRegisterOrUpgradeDefaultsToStudent(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)

	user, err := svc.RegisterOrUpgrade(context.Background(), &dto.RegisterRequest{
		Username: "anon", Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("RegisterOrUpgrade: %v", err)
	}
	if user.Profile.Role != models.DefaultRole {
		t.Errorf("role = %q, want %q", user.Profile.Role, models.DefaultRole)
	}
}

func TestRegisterOrUpgradeConflicts(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "taken", models.RoleStudent, "+263775000005")

	tests := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"username", dto.RegisterRequest{Username: "taken", Password: "supersecret"}, ErrUsernameTaken},
		{"phone", dto.RegisterRequest{Username: "fresh", Password: "supersecret", PhoneNumber: "+263775000005"}, ErrPhoneTaken},
		{"role", dto.RegisterRequest{Username: "fresh", Password: "supersecret", Role: "admin"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegisterOrUpgrade(ctx, &tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegisterOrUpgradeUsernameClashWithShadowUpgrade(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "chipo", models.RoleStudent, "")
	if _, err := svc.ResolveOrCreateForPhone(ctx, "+263776000006"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err := svc.RegisterOrUpgrade(ctx, &dto.RegisterRequest{
		Username: "chipo", Password: "supersecret", PhoneNumber: "+263776000006",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	var shadow models.User
	if err := db.Where("username = ?", "+263776000006").First(&shadow).Error; err != nil {
		t.Fatalf("shadow identity should be untouched: %v", err)
	}
	if !shadow.Shadow {
		t.Error("shadow flag cleared by failed upgrade")
	}
}

func TestUpdateProfileRespectsRole(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewIdentityService(db)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent, "")

	program := "Law"
	company := "Not a landlord"
	phone := "whatsapp:+263777000007"
	user, err := svc.UpdateProfile(context.Background(), student.ID, &dto.UpdateProfileRequest{
		Program:     &program,
		CompanyName: &company,
		PhoneNumber: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Profile.Program != "Law" {
		t.Errorf("program = %q", user.Profile.Program)
	}
	if user.Profile.CompanyName != "" {
		t.Errorf("company = %q, want unset for students", user.Profile.CompanyName)
	}
	if user.Profile.Phone() != "+263777000007" {
		t.Errorf("phone = %q", user.Profile.Phone())
	}
}
