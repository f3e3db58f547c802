package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestReportLifecycle(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewModerationService(db, NewContentFilter())
	ctx := context.Background()

	landlord := testutil.CreateUser(t, db, "landlord", models.RoleLandlord, "")
	student := testutil.CreateUser(t, db, "student", models.RoleStudent, "")
	p := testutil.CreateProperty(t, db, landlord.ID, "Flat", 100)

	if _, err := svc.CreateReport(ctx, student.ID, p.ID, &dto.CreateReportRequest{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("missing reason err = %v, want invalid", err)
	}
	if _, err := svc.CreateReport(ctx, student.ID, p.ID, &dto.CreateReportRequest{Reason: "boring"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown reason err = %v, want invalid", err)
	}
	if _, err := svc.CreateReport(ctx, student.ID, 404, &dto.CreateReportRequest{Reason: "fake"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing property err = %v, want not found", err)
	}

	report, err := svc.CreateReport(ctx, student.ID, p.ID, &dto.CreateReportRequest{Reason: "Unavailable", Description: "Already let"})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.Reason != models.ReasonUnavailable || report.IsResolved {
		t.Errorf("report = %+v", report)
	}

	var reloaded models.Property
	db.First(&reloaded, p.ID)
	if !reloaded.IsAvailable {
		t.Error("filing a report changed the property")
	}

	open := false
	reports, total, err := svc.ListReports(ctx, &open, 20, 0)
	if err != nil || total != 1 || len(reports) != 1 {
		t.Fatalf("ListReports = %d/%d, %v", len(reports), total, err)
	}

	resolved, err := svc.ResolveReport(ctx, report.ID, &dto.ResolveReportRequest{IsResolved: true, AdminNote: "checked"})
	if err != nil {
		t.Fatalf("ResolveReport: %v", err)
	}
	if !resolved.IsResolved || resolved.AdminNote != "checked" {
		t.Errorf("resolved = %+v", resolved)
	}
	if _, err := svc.ResolveReport(ctx, uuid.New(), &dto.ResolveReportRequest{IsResolved: true}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing report err = %v, want not found", err)
	}
}
