package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Aggregator is the part of *mongo.Collection the executor needs.
type Aggregator interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
}

var _ Aggregator = (*mongo.Collection)(nil)

// Executor runs pipelines and decodes their output into scored records.
type Executor struct {
	coll         Aggregator
	allowDiskUse bool
	batchSize    int32
	maxAttempts  int
	retryDelay   time.Duration
	logger       *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithAllowDiskUse lets the server spill large $facet and $group stages to disk.
func WithAllowDiskUse(allow bool) Option {
	return func(e *Executor) {
		e.allowDiskUse = allow
	}
}

// WithBatchSize sets the number of documents per cursor batch.
func WithBatchSize(n int32) Option {
	return func(e *Executor) {
		e.batchSize = n
	}
}

// WithRetry retries aggregations that fail with network errors or timeouts.
// Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Executor) {
		e.maxAttempts = maxAttempts
		e.retryDelay = baseDelay
	}
}

// NewExecutor creates an executor over coll.
func NewExecutor(coll Aggregator, opts ...Option) (*Executor, error) {
	if coll == nil {
		return nil, ErrCollectionRequired
	}
	e := &Executor{
		coll:        coll,
		maxAttempts: 1,
		retryDelay:  time.Second,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes pipeline and returns the decoded results in server order.
// Cancelling ctx aborts the aggregation and the cursor iteration.
func (e *Executor) Run(ctx context.Context, pipeline []bson.D) ([]*core.ScoredRecord, error) {
	fingerprint, err := core.Fingerprint(pipeline)
	if err != nil {
		return nil, err
	}
	logger := e.logger.With("pipeline", fingerprint)

	aggOpts := options.Aggregate()
	if e.allowDiskUse {
		aggOpts.SetAllowDiskUse(true)
	}
	if e.batchSize > 0 {
		aggOpts.SetBatchSize(e.batchSize)
	}

	start := time.Now()
	var cursor *mongo.Cursor
	err = retryWithBackoff(ctx, logger, func() error {
		var aggErr error
		cursor, aggErr = e.coll.Aggregate(ctx, mongo.Pipeline(pipeline), aggOpts)
		return aggErr
	}, isTransient, e.maxAttempts, e.retryDelay)
	if err != nil {
		logger.Error("error running aggregation", "stages", len(pipeline), "err", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]*core.ScoredRecord, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		sr, err := decodeScored(doc)
		if err != nil {
			logger.Warn("malformed result document", "err", err)
			return nil, err
		}
		results = append(results, sr)
	}
	if err := cursor.Err(); err != nil {
		logger.Error("cursor error", "err", err)
		return nil, err
	}

	logger.Debug("aggregation complete", "results", len(results), "elapsed", time.Since(start))
	return results, nil
}

// decodeScored lifts _id and _filter._score out of a grouped document. The
// remaining fields are the ones the group stage carried.
func decodeScored(doc bson.M) (*core.ScoredRecord, error) {
	id, ok := doc[core.IDField].(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMissingID, doc[core.IDField])
	}

	score := 0
	if filter, ok := doc[core.FilterField].(bson.M); ok {
		score = toInt(filter["_score"])
	}

	fields := make(bson.M, len(doc))
	for k, v := range doc {
		if k == core.IDField || k == core.FilterField {
			continue
		}
		fields[k] = v
	}

	return &core.ScoredRecord{
		ID:     id,
		Tier:   core.TierForScore(score),
		Score:  score,
		Fields: fields,
	}, nil
}

// toInt converts any numeric BSON value to int. Non-numeric values are 0.
func toInt(v any) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
