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

package core

import "errors"

// Argument errors raised while building stages. They are returned immediately and
// never deferred into an emitted pipeline.
var (
	// ErrInvalidFields indicates a slug or group field list is empty or holds a blank name.
	ErrInvalidFields = errors.New("invalid field list")

	// ErrInvalidRange indicates a malformed range specification.
	ErrInvalidRange = errors.New("invalid range specification")

	// ErrUnsupportedOperator indicates a range condition outside the accepted operators.
	ErrUnsupportedOperator = errors.New("unsupported comparison operator")

	// ErrNoBranches indicates every search branch was disabled.
	ErrNoBranches = errors.New("all search branches disabled")

	// ErrInvalidDedupMode indicates an unknown dedup mode.
	ErrInvalidDedupMode = errors.New("invalid dedup mode")
)
