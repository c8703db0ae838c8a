package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/pattern"
	"github.com/poiesic/keyrank/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Searcher evaluates tiered keyword searches over a record repository.
type Searcher struct {
	repository   storage.RecordRepository
	compiler     *pattern.Compiler
	pool         *ants.Pool
	poolSize     int
	matchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCompiler sets the predicate compiler.
// Default is pattern.NewCompiler().
func WithCompiler(compiler *pattern.Compiler) Option {
	return func(s *Searcher) error {
		if compiler != nil {
			s.compiler = compiler
		}
		return nil
	}
}

// WithPoolSize sets the number of matching workers.
// Default is runtime.NumCPU().
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size <= 0 {
			return ErrInvalidPoolSize
		}
		s.poolSize = size
		return nil
	}
}

// WithMatchTimeout bounds a single regular expression match.
// Default is pattern.DefaultMatchTimeout.
func WithMatchTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout > 0 {
			s.matchTimeout = timeout
		}
		return nil
	}
}

// NewSearcher creates a new searcher. Call Release when done with it.
func NewSearcher(repository storage.RecordRepository, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Searcher{
		repository:   repository,
		compiler:     pattern.NewCompiler(),
		poolSize:     runtime.NumCPU(),
		matchTimeout: pattern.DefaultMatchTimeout,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}
	s.pool = pool

	return s, nil
}

// Release stops the worker pool.
func (s *Searcher) Release() {
	s.pool.Release()
}

// Search ranks the repository's records against query.
func (s *Searcher) Search(ctx context.Context, query string, spec core.SearchSpec) ([]*core.ScoredRecord, error) {
	return s.SearchWithMonitor(ctx, query, spec, nil)
}

// SearchWithMonitor ranks the repository's records against query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, spec core.SearchSpec, monitor SearchMonitor) ([]*core.ScoredRecord, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := core.ValidateSearchSpec(spec); err != nil {
		return nil, err
	}

	monitor.Start(query)

	// 1. Compile one matcher per enabled branch
	tokens := pattern.Tokenize(query)
	monitor.AfterTokenize(tokens)

	tiers := spec.Options.EnabledTiers()
	preds := make([]pattern.Predicate, len(tiers))
	matchers := make([]*regexp2.Regexp, len(tiers))
	for i, tier := range tiers {
		pred, err := s.compiler.Compile(tier, tokens)
		if err != nil {
			return nil, err
		}
		re, err := pred.Compile()
		if err != nil {
			s.logger.Error("error compiling predicate", "predicate", pred.String(), "err", err)
			return nil, err
		}
		re.MatchTimeout = s.matchTimeout
		preds[i] = pred
		matchers[i] = re
	}
	monitor.AfterCompile(preds)

	// 2. Load candidates
	records, err := s.repository.ListRecords(ctx)
	if err != nil {
		s.logger.Error("error listing records", "collection", s.repository.Collection(), "err", err)
		return nil, err
	}
	monitor.AfterRecordRetrieval(records)

	// 3. Match every slug against every branch
	matched, err := s.matchAll(ctx, records, spec.SlugFields, matchers)
	if err != nil {
		return nil, err
	}

	// 4. Concatenate branches in order and collapse by _id
	byID := make(map[primitive.ObjectID]*core.ScoredRecord)
	results := make([]*core.ScoredRecord, 0)
	hits := 0
	for j, tier := range tiers {
		for i, record := range records {
			if !matched[i][j] {
				continue
			}
			monitor.BranchHit(tier, record)
			id, ok := record.ID()
			if !ok {
				continue
			}
			hits++

			existing, seen := byID[id]
			if !seen {
				sr := &core.ScoredRecord{
					ID:     id,
					Tier:   tier,
					Score:  tier.Score(),
					Fields: carry(record, spec.GroupFields),
				}
				byID[id] = sr
				results = append(results, sr)
				continue
			}
			if spec.Options.Dedup == core.DedupMaxScore && tier.Score() > existing.Score {
				existing.Tier = tier
				existing.Score = tier.Score()
				existing.Fields = carry(record, spec.GroupFields)
			}
		}
	}
	monitor.AfterMerge(hits, len(results))

	// Sort by score descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	monitor.Finish(results)

	s.logger.Debug("search complete",
		"query", query,
		"collection", s.repository.Collection(),
		"candidates", len(records),
		"results", len(results))

	return results, nil
}

// matchAll evaluates matchers against the slug of every record on the worker
// pool. matched[i][j] reports whether record i satisfies matcher j.
func (s *Searcher) matchAll(ctx context.Context, records []core.Record, slugFields []string, matchers []*regexp2.Regexp) ([][]bool, error) {
	matched := make([][]bool, len(records))
	errs := make([]error, len(records))

	var wg sync.WaitGroup
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			matched[i], errs[i] = matchRecord(record, slugFields, matchers)
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
			id, _ := records[i].ID()
			s.logger.Error("error matching record", "id", id.Hex(), "err", err)
			return nil, err
		}
	}
	return matched, nil
}

func matchRecord(record core.Record, slugFields []string, matchers []*regexp2.Regexp) ([]bool, error) {
	slug, err := buildSlug(record, slugFields)
	if err != nil {
		return nil, err
	}
	hits := make([]bool, len(matchers))
	for j, re := range matchers {
		ok, err := re.MatchString(slug)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", slug, err)
		}
		hits[j] = ok
	}
	return hits, nil
}
