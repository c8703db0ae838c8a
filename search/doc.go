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

// Package search evaluates tiered keyword searches in process.
//
// The Searcher runs the same algorithm the stages package emits for MongoDB
// against records held in a storage.RecordRepository:
//   - a lower-cased slug is built from the configured fields
//   - each enabled tier predicate is matched against every slug
//   - hits are concatenated in branch order and collapsed by _id
//   - the survivors are ordered by score, highest first
//
// It is useful for local datasets and for checking what a pipeline will
// return before it is sent to a server.
package search
