package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/storage"
	"go.mongodb.org/mongo-driver/bson"
)

// DefaultBatchSize is the number of documents stored per transaction.
const DefaultBatchSize = 500

// Pipeline decodes documents concurrently and stores them in batches.
type Pipeline struct {
	repository storage.RecordRepository
	pool       *ants.Pool
	batchSize  int
	progress   *ProgressTracker
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent decoding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents are stored per transaction.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithProgress reports stored record counts to tracker.
func WithProgress(tracker *ProgressTracker) Option {
	return func(p *Pipeline) error {
		p.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.RecordRepository, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRecordRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		repository: repository,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest reads every document from r and stores it. It returns the number of
// documents stored. A malformed document stops ingestion; batches stored
// before it stay stored.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader) (int, error) {
	reader := newDocumentReader(r)
	stored := 0
	if p.progress != nil {
		p.progress.Start()
		defer p.progress.Finish()
	}
	batch := make([]json.RawMessage, 0, p.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		records, err := p.decodeBatch(batch, stored)
		if err != nil {
			return err
		}
		if _, err := p.repository.AddRecords(ctx, records...); err != nil {
			p.logger.Error("error storing batch", "collection", p.repository.Collection(), "offset", stored, "err", err)
			return err
		}
		stored += len(records)
		if p.progress != nil {
			p.progress.Increment(len(records))
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		raw, err := reader.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stored, fmt.Errorf("document %d: %w", stored+len(batch), err)
		}
		batch = append(batch, raw)
		if len(batch) == p.batchSize {
			if err := flush(); err != nil {
				return stored, err
			}
		}
	}
	if err := flush(); err != nil {
		return stored, err
	}

	p.logger.Info("ingestion complete", "collection", p.repository.Collection(), "records", stored)
	return stored, nil
}

// decodeBatch decodes raw extended JSON documents on the worker pool.
// offset is the input position of the first document, for error messages.
func (p *Pipeline) decodeBatch(batch []json.RawMessage, offset int) ([]core.Record, error) {
	records := make([]core.Record, len(batch))
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i, raw := range batch {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			records[i], errs[i] = decodeRecord(raw)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", offset+i, err)
		}
	}
	return records, nil
}

// decodeRecord parses one canonical or relaxed extended JSON document.
func decodeRecord(raw json.RawMessage) (core.Record, error) {
	var m bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return core.Record(m), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
