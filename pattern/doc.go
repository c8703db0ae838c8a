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

// Package pattern turns free-text queries into case- and diacritic-insensitive
// regular expressions for the three search tiers.
//
// A query is split by Tokenize, each token is escaped, lower-cased and expanded
// by a Normalizer, and a Compiler assembles the fragments into one Predicate per
// tier:
//
//   - exact: every token as a whole word, any order: (?=.*\bana)(?=.*\blopez)
//   - mixed: any token as a substring: ana|lopez
//   - fuzzy: every distinct query character somewhere: (?=.*a)(?=.*n)(?=.*l)...
//
// Predicates carry the pattern source and convert to a BSON regular expression
// for the database, or compile to a regexp2 matcher for in-process evaluation
// (Go's regexp package has no lookahead).
//
// An empty query compiles to an empty pattern, which matches every record.
// Callers that want blank input to match nothing must check for it first.
package pattern
