package logging

import (
	"log/slog"
	"time"

	"github.com/campus-acc/campus-backend/internal/models"
	"gorm.io/gorm"
)

// PruneSystemLogs deletes persisted log entries older than retentionDays.
func PruneSystemLogs(db *gorm.DB, retentionDays int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup prunes system_logs once a day until done is closed.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PruneSystemLogs(db, retentionDays, time.Now())
				if err != nil {
					slog.Error("log cleanup failed", "error", err.Error())
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted, "retention_days", retentionDays)
				}
			case <-done:
				return
			}
		}
	}()
}
