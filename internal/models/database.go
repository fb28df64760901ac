package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Database represents the database connection
type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewDatabase creates a new database connection
func NewDatabase(ctx context.Context, mongoURL, dbName string) (*Database, error) {
	// Set client options
	clientOptions := options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	db := client.Database(dbName)

	return &Database{
		Client: client,
		DB:     db,
	}, nil
}

// Close closes the database connection
func (d *Database) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// CrashCollection is the collection crash records are stored in
const CrashCollection = "crashes"

// CreateIndexes creates the indexes the crash log queries rely on
func (d *Database) CreateIndexes(ctx context.Context) error {
	crashes := d.DB.Collection(CrashCollection)

	// Handle potential index conflicts by dropping conflicting indexes first
	if err := d.handleIndexConflicts(ctx, crashes); err != nil {
		return err
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "build", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := crashes.Indexes().CreateMany(ctx, indexes)
	return err
}

// Health pings the server
func (d *Database) Health(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

// handleIndexConflicts drops a timestamp index created with TTL options by
// older builds, which would otherwise conflict with the plain index
func (d *Database) handleIndexConflicts(ctx context.Context, collection *mongo.Collection) error {
	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var existingIndexes []bson.M
	if err = cursor.All(ctx, &existingIndexes); err != nil {
		return err
	}

	for _, index := range existingIndexes {
		if indexName, ok := index["name"].(string); ok && indexName == "timestamp_1" {
			if _, exists := index["expireAfterSeconds"]; exists {
				if _, err := collection.Indexes().DropOne(ctx, "timestamp_1"); err != nil {
					return err
				}
				break
			}
		}
	}

	return nil
}
