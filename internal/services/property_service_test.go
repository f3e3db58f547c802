package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/testutil"
)

func TestCreatePropertyRequiresLandlord(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewPropertyService(db)
	ctx := context.Background()
	student := testutil.CreateUser(t, db, "student", models.RoleStudent, "")
	landlord := testutil.CreateUser(t, db, "landlord", models.RoleLandlord, "+263771000000")

	req := &dto.CreatePropertyRequest{Title: "Loft", PricePerMonth: 120, HasWifi: true}
	if _, err := svc.Create(ctx, student.ID, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("student create err = %v, want forbidden", err)
	}

	p, err := svc.Create(ctx, landlord.ID, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.IsAvailable || !p.VisitorsAllowed || p.GenderPreference != models.GenderMixed {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.Landlord.Profile.Phone() != "+263771000000" {
		t.Errorf("landlord profile not loaded: %+v", p.Landlord)
	}

	closed := false
	p2, err := svc.Create(ctx, landlord.ID, &dto.CreatePropertyRequest{Title: "Closed", PricePerMonth: 90, IsAvailable: &closed})
	if err != nil {
		t.Fatalf("Create closed: %v", err)
	}
	if p2.IsAvailable {
		t.Error("explicit is_available=false ignored")
	}
}

func TestListOnlyAvailableCheapestFirst(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewPropertyService(db)
	landlord := testutil.CreateUser(t, db, "landlord", models.RoleLandlord, "")
	testutil.CreateProperty(t, db, landlord.ID, "Mid", 100)
	testutil.CreateProperty(t, db, landlord.ID, "Cheap", 50)
	hidden := testutil.CreateProperty(t, db, landlord.ID, "Hidden", 10)
	db.Model(hidden).Update("is_available", false)
	testutil.CreateProperty(t, db, landlord.ID, "Dear", 300)

	maxPrice := 150.0
	got, err := svc.List(context.Background(), &maxPrice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Cheap" || got[1].Title != "Mid" {
		t.Errorf("List = %v", titles(got))
	}

	mine, err := svc.ListByLandlord(context.Background(), landlord.ID)
	if err != nil || len(mine) != 4 {
		t.Errorf("ListByLandlord = %v, %v", titles(mine), err)
	}
}

func titles(ps []models.Property) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func TestUpdateDeleteOwnership(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewPropertyService(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner", models.RoleLandlord, "")
	other := testutil.CreateUser(t, db, "other", models.RoleLandlord, "")
	p := testutil.CreateProperty(t, db, owner.ID, "Flat", 100)
	room := testutil.CreateRoom(t, db, p.ID, "R1")

	price := 110.0
	if _, err := svc.Update(ctx, p.ID, other.ID, &dto.UpdatePropertyRequest{PricePerMonth: &price}); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update err = %v", err)
	}
	updated, err := svc.Update(ctx, p.ID, owner.ID, &dto.UpdatePropertyRequest{PricePerMonth: &price})
	if err != nil || updated.PricePerMonth != 110 {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	if _, err := svc.AddImage(ctx, p.ID, owner.ID, &dto.AddImageRequest{URL: "https://img.example/1.jpg", RoomID: &room.ID}); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	otherProperty := testutil.CreateProperty(t, db, owner.ID, "Second", 80)
	if _, err := svc.AddImage(ctx, otherProperty.ID, owner.ID, &dto.AddImageRequest{URL: "x", RoomID: &room.ID}); !errors.Is(err, ErrInvalid) {
		t.Errorf("mismatched room err = %v, want invalid", err)
	}

	if err := svc.Delete(ctx, p.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete err = %v", err)
	}
	if err := svc.Delete(ctx, p.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var rooms, images int64
	db.Model(&models.Room{}).Where("property_id = ?", p.ID).Count(&rooms)
	db.Model(&models.PropertyImage{}).Where("property_id = ?", p.ID).Count(&images)
	if rooms != 0 || images != 0 {
		t.Errorf("orphans left: rooms=%d images=%d", rooms, images)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted property still readable: %v", err)
	}
}

func TestFavoritesAreIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewFavoriteService(db)
	ctx := context.Background()
	landlord := testutil.CreateUser(t, db, "landlord", models.RoleLandlord, "")
	student := testutil.CreateUser(t, db, "student", models.RoleStudent, "")
	a := testutil.CreateProperty(t, db, landlord.ID, "A", 100)
	b := testutil.CreateProperty(t, db, landlord.ID, "B", 100)

	for i := 0; i < 2; i++ {
		if err := svc.Add(ctx, student.ID, a.ID); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if err := svc.Add(ctx, student.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing property err = %v", err)
	}

	list, err := svc.List(ctx, student.ID)
	if err != nil || len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("List = %v, %v", titles(list), err)
	}
	set, err := svc.FavoritedSet(ctx, student.ID, []uint{a.ID, b.ID})
	if err != nil || !set[a.ID] || set[b.ID] {
		t.Errorf("FavoritedSet = %v, %v", set, err)
	}

	if err := svc.Remove(ctx, student.ID, a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = svc.List(ctx, student.ID)
	if len(list) != 0 {
		t.Errorf("List after remove = %v", titles(list))
	}
}
