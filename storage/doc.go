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

// Package storage provides the embedded record store used for in-process search.
//
// Keyword search normally runs inside MongoDB through the stages package. The
// storage layer holds the same schemaless documents locally so the search
// package can rank them without a database server, for tests, fixtures and
// small offline collections.
//
// # Architecture
//
//   - RecordRepository: add, fetch, delete and list the records of one collection
//   - badger subpackage: BadgerDB implementation, one key prefix per collection
//
// Records are core.Record values (bson.M). A record without an _id receives a
// new ObjectID when it is added, as MongoDB would do on insert.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo := badger.NewRecordRepository(backend, "devices")
//	added, err := repo.AddRecords(ctx, core.Record{"brand": "Acme"})
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository("people")
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Serialization
//
// Records are stored in their BSON encoding, so every value type the database
// driver understands round trips unchanged.
package storage
