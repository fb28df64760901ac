package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spotdesk/internal/models"
)

// mongoCrashRepository implements CrashRepository using MongoDB
type mongoCrashRepository struct {
	collection *mongo.Collection
}

// NewMongoCrashRepository creates a new MongoDB-backed crash repository
func NewMongoCrashRepository(db *models.Database) CrashRepository {
	return &mongoCrashRepository{
		collection: db.DB.Collection(models.CrashCollection),
	}
}

// Save inserts a crash record
func (r *mongoCrashRepository) Save(ctx context.Context, crash *models.CrashRecord) error {
	crash.SchemaVersion = models.CurrentSchemaVersion
	if crash.Timestamp.IsZero() {
		crash.Timestamp = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, crash)
	if err != nil {
		return fmt.Errorf("failed to insert crash record: %w", err)
	}
	crash.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindAll returns the latest crash records, oldest first
func (r *mongoCrashRepository) FindAll(ctx context.Context, limit int) ([]*models.CrashRecord, error) {
	// newest first so the limit keeps the latest records; reversed below
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list crash records: %w", err)
	}
	defer cursor.Close(ctx)

	crashes := []*models.CrashRecord{}
	for cursor.Next(ctx) {
		var crash models.CrashRecord
		if err := cursor.Decode(&crash); err != nil {
			slog.Error("Failed to decode crash record", "error", err)
			continue
		}
		crashes = append(crashes, &crash)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read crash records: %w", err)
	}

	slices.Reverse(crashes)
	return crashes, nil
}

// FindByID finds a crash record by its ObjectID
func (r *mongoCrashRepository) FindByID(ctx context.Context, id string) (*models.CrashRecord, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid object ID: %w", err)
	}

	var crash models.CrashRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&crash)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find crash record: %w", err)
	}
	return &crash, nil
}

// DeleteOlderThan prunes the crash log
func (r *mongoCrashRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete crash records: %w", err)
	}
	return result.DeletedCount, nil
}

// Count returns the number of stored crash records
func (r *mongoCrashRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
