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

// Package ingestion loads documents into a record repository.
//
// The Pipeline reads a JSON array or a stream of JSON documents, decodes each
// one as MongoDB extended JSON on a worker pool and stores them in batches.
// Batches are written in input order, so freshly assigned ObjectIDs follow
// the order of the source.
package ingestion
