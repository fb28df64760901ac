package repositories

import (
	"context"
	"log/slog"
	"time"

	"spotdesk/internal/models"
)

// recordTimeout bounds how long the event loop waits on the crash log
const recordTimeout = 5 * time.Second

// CrashRecorder persists panics recovered by the session inbox
type CrashRecorder struct {
	repository CrashRepository
	build      string
}

// NewCrashRecorder creates a recorder that tags records with build
func NewCrashRecorder(repository CrashRepository, build string) *CrashRecorder {
	return &CrashRecorder{
		repository: repository,
		build:      build,
	}
}

// RecordCrash stores one crash record. Failures are logged, never returned,
// since the caller is recovering from a panic already.
func (r *CrashRecorder) RecordCrash(ctx context.Context, message, stack string) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	crash := models.NewCrashRecord(message, stack)
	crash.Build = r.build

	if err := r.repository.Save(ctx, crash); err != nil {
		slog.Error("Failed to record crash", "error", err, "message", message)
		return
	}
	slog.Warn("Crash recorded", "crash_id", crash.ID.Hex())
}
