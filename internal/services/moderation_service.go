package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModerationService files listing reports and lets admins resolve them.
// Reports never change the reported property.
type ModerationService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewModerationService(db *gorm.DB, filter *ContentFilter) *ModerationService {
	return &ModerationService{db: db, filter: filter}
}

func (s *ModerationService) CreateReport(ctx context.Context, reporterID uuid.UUID, propertyID uint, req *dto.CreateReportRequest) (*models.Report, error) {
	reason := models.ReportReason(strings.ToLower(strings.TrimSpace(req.Reason)))
	if reason == "" {
		return nil, newError(ErrInvalid, "reason is required")
	}
	if !reason.IsValid() {
		return nil, ErrInvalidReason
	}
	if err := s.filter.Screen(req.Description); err != nil {
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

	report := models.Report{
		ReporterID:  reporterID,
		PropertyID:  propertyID,
		Reason:      reason,
		Description: req.Description,
	}
	if err := db.Omit(clause.Associations).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	slog.Warn("property reported",
		"property_id", propertyID, "user_id", reporterID.String(), "reason", string(reason), "action", "report.create")
	return &report, nil
}

// ListReports pages through reports, newest first. resolved filters by the
// admin flag when non-nil.
func (s *ModerationService) ListReports(ctx context.Context, resolved *bool, limit, offset int) ([]models.Report, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Report{})
	if resolved != nil {
		query = query.Where("is_resolved = ?", *resolved)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (s *ModerationService) ResolveReport(ctx context.Context, reportID uuid.UUID, req *dto.ResolveReportRequest) (*models.Report, error) {
	db := s.db.WithContext(ctx)
	result := db.Model(&models.Report{}).Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"is_resolved": req.IsResolved,
			"admin_note":  req.AdminNote,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportNotFound
	}
	var report models.Report
	if err := db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
