// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keyrank

import (
	"log/slog"
	"sync"

	"github.com/poiesic/keyrank/ingestion"
	"github.com/poiesic/keyrank/search"
	"github.com/poiesic/keyrank/storage"
	"github.com/poiesic/keyrank/storage/badger"
)

// Database is an embedded record store holding any number of collections.
type Database struct {
	backend *badger.Backend
	mu      sync.Mutex
	repos   map[string]*badger.RecordRepository
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// InMemory keeps the database in memory. The path passed to NewDatabase is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets a custom logger.
// Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Database{
		backend: backend,
		repos:   make(map[string]*badger.RecordRepository),
		logger:  options.logger,
	}, nil
}

func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	// Close repositories
	for name, repo := range db.repos {
		if err := repo.Close(); err != nil {
			db.logger.Error("error closing record repository", "collection", name, "err", err)
			return err
		}
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Records returns the repository for a collection, creating it on first use.
func (db *Database) Records(collection string) storage.RecordRepository {
	db.mu.Lock()
	defer db.mu.Unlock()

	repo, ok := db.repos[collection]
	if !ok {
		repo = badger.NewRecordRepository(db.backend, collection)
		db.repos[collection] = repo
	}
	return repo
}

func (db *Database) NewIngestionPipeline(collection string, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.Records(collection), opts...)
}

func (db *Database) NewSearcher(collection string, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.Records(collection), opts...)
}
