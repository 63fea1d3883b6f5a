package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/pacfrag/internal/database/repository"
	"github.com/jask/pacfrag/internal/logger"
)

// MaintenanceService houses cache housekeeping.
type MaintenanceService struct {
	DB        *sql.DB
	Snapshots *repository.SnapshotRepo
}

// Prune deletes snapshots older than keepDays days and compacts the file.
func (s *MaintenanceService) Prune(ctx context.Context, keepDays int) (int64, error) {
	if s.DB == nil || s.Snapshots == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	if keepDays < 0 {
		return 0, fmt.Errorf("maintenance: keep must not be negative, got %d", keepDays)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	n, err := s.Snapshots.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	logger.FromContext(ctx).Info("pruned snapshots", "removed", n, "cutoff", cutoff.Format(time.DateOnly))
	return n, nil
}
