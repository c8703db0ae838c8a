package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordRepository is the BadgerDB implementation of storage.RecordRepository.
type RecordRepository struct {
	backend    *Backend
	collection string
	logger     *slog.Logger
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a repository for one collection on backend.
func NewRecordRepository(backend *Backend, collection string) *RecordRepository {
	return &RecordRepository{
		backend:    backend,
		collection: collection,
		logger:     backend.logger.With("collection", collection),
	}
}

// Collection returns the collection name.
func (r *RecordRepository) Collection() string {
	return r.collection
}

// Close is a no-op; the backend owns the database handle.
func (r *RecordRepository) Close() error {
	return nil
}

// AddRecords stores one or more records in a single transaction.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...core.Record) ([]core.Record, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record == nil {
				return fmt.Errorf("%w: nil record", storage.ErrInvalidRecord)
			}
			id, err := assignID(record)
			if err != nil {
				return err
			}

			key := makeRecordKey(r.collection, id)
			if _, err := tx.Get(key); err == nil {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, id.Hex())
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			value, err := storage.MarshalRecord(record)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("added records", "count", len(records))
	return records, nil
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id primitive.ObjectID) (core.Record, error) {
	var record core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readRecord(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// GetRecords retrieves the records that exist among ids, in the order given.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...primitive.ObjectID) ([]core.Record, error) {
	records := make([]core.Record, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readRecord(tx, id)
			if err != nil {
				return err
			}
			if record != nil {
				records = append(records, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecords removes records by their IDs.
func (r *RecordRepository) DeleteRecords(ctx context.Context, ids ...primitive.ObjectID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(r.collection, id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", storage.ErrNotFound, id.Hex())
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListRecords returns every record of the collection in ascending _id order.
func (r *RecordRepository) ListRecords(ctx context.Context) ([]core.Record, error) {
	var records []core.Record
	err := r.backend.ScanPrefix(ctx, makeCollectionPrefix(r.collection), func(val []byte) error {
		record, err := storage.UnmarshalRecord(val)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of records in the collection.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.ScanPrefix(ctx, makeCollectionPrefix(r.collection), func([]byte) error {
		count++
		return nil
	})
	return count, err
}

// readRecord reads a record within a transaction. Returns nil if not found.
func (r *RecordRepository) readRecord(tx *badger.Txn, id primitive.ObjectID) (core.Record, error) {
	item, err := tx.Get(makeRecordKey(r.collection, id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record core.Record
	err = item.Value(func(val []byte) error {
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	return record, err
}

// assignID returns the record's ObjectID, generating one when _id is absent.
func assignID(record core.Record) (primitive.ObjectID, error) {
	raw, present := record[core.IDField]
	if !present || raw == nil {
		id := primitive.NewObjectID()
		record[core.IDField] = id
		return id, nil
	}
	id, ok := raw.(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("%w: _id must be a non-zero ObjectID, got %T", storage.ErrInvalidRecord, raw)
	}
	return id, nil
}
