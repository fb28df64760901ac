package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spotdesk/internal/models"
)

// memoryCrashRepository keeps crash records in process memory, bounded to maxRecords
type memoryCrashRepository struct {
	mu         sync.RWMutex
	crashes    []*models.CrashRecord
	maxRecords int
}

// NewMemoryCrashRepository creates a crash repository used when MongoDB is not configured
func NewMemoryCrashRepository(maxRecords int) CrashRepository {
	if maxRecords <= 0 {
		maxRecords = 100
	}
	return &memoryCrashRepository{maxRecords: maxRecords}
}

func (r *memoryCrashRepository) Save(ctx context.Context, crash *models.CrashRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	crash.SchemaVersion = models.CurrentSchemaVersion
	if crash.Timestamp.IsZero() {
		crash.Timestamp = time.Now().UTC()
	}
	if crash.ID.IsZero() {
		crash.ID = primitive.NewObjectID()
	}

	stored := *crash
	r.crashes = append(r.crashes, &stored)
	sort.SliceStable(r.crashes, func(i, j int) bool {
		return r.crashes[i].Before(r.crashes[j])
	})

	// Drop the oldest records over capacity
	if over := len(r.crashes) - r.maxRecords; over > 0 {
		r.crashes = append([]*models.CrashRecord(nil), r.crashes[over:]...)
	}
	return nil
}

func (r *memoryCrashRepository) FindAll(ctx context.Context, limit int) ([]*models.CrashRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// keep the latest limit records; r.crashes is sorted oldest first
	start := 0
	if limit > 0 && limit < len(r.crashes) {
		start = len(r.crashes) - limit
	}

	crashes := make([]*models.CrashRecord, 0, len(r.crashes)-start)
	for _, crash := range r.crashes[start:] {
		c := *crash
		crashes = append(crashes, &c)
	}
	return crashes, nil
}

func (r *memoryCrashRepository) FindByID(ctx context.Context, id string) (*models.CrashRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid object ID: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, crash := range r.crashes {
		if crash.ID == objectID {
			c := *crash
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memoryCrashRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.crashes[:0]
	for _, crash := range r.crashes {
		if !crash.Timestamp.Before(cutoff) {
			kept = append(kept, crash)
		}
	}
	deleted := int64(len(r.crashes) - len(kept))
	r.crashes = kept
	return deleted, nil
}

func (r *memoryCrashRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.crashes)), nil
}
