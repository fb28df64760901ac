package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CurrentSchemaVersion = 1

// CrashRecord is a panic recovered from the session event loop
type CrashRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SchemaVersion int                `bson:"schema_version" json:"schema_version"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Message   string    `bson:"message" json:"message"`
	Stack     string    `bson:"stack" json:"stack"`

	// Build identifies the binary that crashed
	Build string `bson:"build,omitempty" json:"build,omitempty"`
}

// NewCrashRecord creates a crash record stamped with the current time
func NewCrashRecord(message, stack string) *CrashRecord {
	return &CrashRecord{
		SchemaVersion: CurrentSchemaVersion,
		Timestamp:     time.Now().UTC().Truncate(time.Millisecond),
		Message:       message,
		Stack:         stack,
	}
}

// Report formats the record the way it is shown in crash lists
func (c *CrashRecord) Report() string {
	var b strings.Builder
	b.WriteString(c.Timestamp.Format(time.RFC3339))
	b.WriteString(": ")
	b.WriteString(c.Message)
	if c.Stack != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(c.Stack, "\n"))
	}
	return b.String()
}

// Before orders records by timestamp, oldest first
func (c *CrashRecord) Before(other *CrashRecord) bool {
	return c.Timestamp.Before(other.Timestamp)
}
