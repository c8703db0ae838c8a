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

// Package stages builds MongoDB aggregation stages for tiered keyword search.
//
// Every builder is a pure function returning a fresh bson.D, so key order is
// preserved when the stages are marshalled and no template is ever shared or
// mutated. BuildKeywordsSearch assembles the full search:
//
//	slug $addFields
//	$facet {exact, mixed, fuzzy}        one $match per tier on _filter._slug
//	$unwind exact, mixed, fuzzy         preserveNullAndEmptyArrays
//	$addFields <tier>._filter._score    3, 2, 1
//	$group by _id with $addToSet per tier
//	$project results: $concatArrays     exact, then mixed, then fuzzy
//	$unwind results
//	$replaceRoot results
//	$sort _filter._score -1             max-score dedup only
//	caller group stage                  dedup by _id
//	$match _id != null                  drops fan-out artifacts
//	$sort _filter._score -1
//
// The filter builders (presence, numeric range, ID exclusion) produce plain
// $match stages that callers usually place before the search stages.
package stages
