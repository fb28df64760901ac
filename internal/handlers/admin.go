package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"spotdesk/internal/handlers/render"
	"spotdesk/internal/repositories"
)

// AdminHandler handles administrative requests
type AdminHandler struct {
	crashes  repositories.CrashRepository
	database *mongo.Database
}

// NewAdminHandler creates a new admin handler. database may be nil when the
// crash log is kept in memory.
func NewAdminHandler(crashes repositories.CrashRepository, database *mongo.Database) *AdminHandler {
	return &AdminHandler{
		crashes:  crashes,
		database: database,
	}
}

// DatabaseStats represents crash log storage statistics
type DatabaseStats struct {
	Backend        string            `json:"backend"`
	DatabaseName   string            `json:"database_name,omitempty"`
	TotalSize      float64           `json:"total_size_mb"`
	StorageSize    float64           `json:"storage_size_mb"`
	IndexSize      float64           `json:"index_size_mb"`
	TotalDocuments int64             `json:"total_documents"`
	CrashRecords   int64             `json:"crash_records"`
	Collections    []CollectionStats `json:"collections,omitempty"`
	LastUpdated    time.Time         `json:"last_updated"`
}

// CollectionStats represents statistics for a single collection
type CollectionStats struct {
	Name        string  `json:"name"`
	Documents   int64   `json:"documents"`
	DataSize    float64 `json:"data_size_mb"`
	StorageSize float64 `json:"storage_size_mb"`
	IndexSize   float64 `json:"index_size_mb"`
	AvgDocSize  float64 `json:"avg_doc_size_bytes"`
}

// GetDatabaseStats handles GET /api/v1/admin/db-stats
func (h *AdminHandler) GetDatabaseStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	stats, err := h.collectDatabaseStats(ctx)
	if err != nil {
		render.Error(c, http.StatusInternalServerError, "Failed to collect database statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// collectDatabaseStats collects crash log storage statistics
func (h *AdminHandler) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	count, err := h.crashes.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count crash records: %w", err)
	}

	stats := &DatabaseStats{
		Backend:        "memory",
		TotalDocuments: count,
		CrashRecords:   count,
		LastUpdated:    time.Now(),
	}
	if h.database == nil {
		return stats, nil
	}

	stats.Backend = "mongodb"
	stats.DatabaseName = h.database.Name()

	var dbStats bson.M
	if err := h.database.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&dbStats); err != nil {
		return nil, fmt.Errorf("failed to get database stats: %w", err)
	}

	stats.TotalSize = megabytes(dbStats["dataSize"])
	stats.StorageSize = megabytes(dbStats["storageSize"])
	stats.IndexSize = megabytes(dbStats["indexSize"])
	if objects, ok := asInt64(dbStats["objects"]); ok {
		stats.TotalDocuments = objects
	}

	collections, err := h.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collName := range collections {
		var collStats bson.M
		err := h.database.RunCommand(ctx, bson.D{{Key: "collStats", Value: collName}}).Decode(&collStats)
		if err != nil {
			slog.Warn("Failed to get collection stats", "collection", collName, "error", err)
			continue
		}

		collectionStat := CollectionStats{
			Name:        collName,
			DataSize:    megabytes(collStats["size"]),
			StorageSize: megabytes(collStats["storageSize"]),
			IndexSize:   megabytes(collStats["totalIndexSize"]),
		}
		if n, ok := asInt64(collStats["count"]); ok {
			collectionStat.Documents = n
		}
		if collectionStat.Documents > 0 && collectionStat.DataSize > 0 {
			collectionStat.AvgDocSize = (collectionStat.DataSize * 1024 * 1024) / float64(collectionStat.Documents)
		}

		stats.Collections = append(stats.Collections, collectionStat)
	}

	return stats, nil
}

// asInt64 reads a numeric stat; the server picks int32, int64 or double
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func megabytes(v interface{}) float64 {
	n, _ := asInt64(v)
	return float64(n) / 1024 / 1024
}
