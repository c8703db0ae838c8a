package storage

import (
	"context"

	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordRepository stores the records of a single collection.
// Implementations must be thread-safe and support concurrent access.
type RecordRepository interface {
	// Collection returns the collection name.
	Collection() string

	// AddRecords stores one or more records.
	// Records without an _id are assigned a new ObjectID in place.
	// Returns ErrDuplicateKey if a record with the same _id already exists
	// and ErrInvalidRecord if an _id is present but is not an ObjectID.
	AddRecords(ctx context.Context, records ...core.Record) ([]core.Record, error)

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id primitive.ObjectID) (core.Record, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...primitive.ObjectID) ([]core.Record, error)

	// DeleteRecords removes records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, ids ...primitive.ObjectID) error

	// ListRecords returns every record in ascending _id order.
	ListRecords(ctx context.Context) ([]core.Record, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Close releases repository resources. It does not close the backend.
	Close() error
}
