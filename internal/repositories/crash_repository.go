package repositories

import (
	"context"
	"time"

	"spotdesk/internal/models"
)

// CrashRepository defines the interface for crash log operations
type CrashRepository interface {
	// Save stores a new crash record and assigns its ID
	Save(ctx context.Context, crash *models.CrashRecord) error

	// FindAll returns the latest limit records, oldest first. limit <= 0 returns all.
	FindAll(ctx context.Context, limit int) ([]*models.CrashRecord, error)

	// FindByID returns nil, nil when no record matches
	FindByID(ctx context.Context, id string) (*models.CrashRecord, error)

	// DeleteOlderThan removes records older than cutoff and reports how many
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Count(ctx context.Context) (int64, error)
}
