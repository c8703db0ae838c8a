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

import (
	"fmt"
	"strings"
)

var operators = map[Operator]bool{
	OpEq:  true,
	OpNe:  true,
	OpGt:  true,
	OpGte: true,
	OpLt:  true,
	OpLte: true,
}

// ValidateOperator checks that op is one of the accepted comparison operators.
func ValidateOperator(op Operator) error {
	if !operators[op] {
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, string(op))
	}
	return nil
}

// ValidateRange validates a range specification.
//
// Validation rules:
//   - Name must not be blank
//   - Field must not be blank
//   - Cond must be an accepted operator
func ValidateRange(r RangeSpec) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidRange)
	}
	if strings.TrimSpace(r.Field) == "" {
		return fmt.Errorf("%w: field is empty for %q", ErrInvalidRange, r.Name)
	}
	if err := ValidateOperator(r.Cond); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	return nil
}

// ValidateFields checks a field list used for slug projection or grouping.
// The list must be non-empty unless allowEmpty is set; no entry may be blank.
func ValidateFields(fields []string, allowEmpty bool) error {
	if len(fields) == 0 && !allowEmpty {
		return fmt.Errorf("%w: no fields given", ErrInvalidFields)
	}
	for i, f := range fields {
		if strings.TrimSpace(strings.TrimPrefix(f, "$")) == "" {
			return fmt.Errorf("%w: field %d is blank", ErrInvalidFields, i)
		}
	}
	return nil
}

// ValidateGroupFields checks the fields carried through deduplication. They
// become top-level output fields, so they may not be dotted paths or collide
// with _id and _filter.
func ValidateGroupFields(fields []string) error {
	if err := ValidateFields(fields, true); err != nil {
		return err
	}
	for _, f := range fields {
		name := FieldName(f)
		if strings.Contains(name, ".") || name == IDField || name == FilterField {
			return fmt.Errorf("%w: %q cannot be a group output field", ErrInvalidFields, name)
		}
	}
	return nil
}

// ValidateOptions rejects option sets that would leave no branch to run.
func ValidateOptions(o SearchOptions) error {
	if len(o.EnabledTiers()) == 0 {
		return ErrNoBranches
	}
	if o.Dedup != DedupMaxScore && o.Dedup != DedupFirstEncountered {
		return fmt.Errorf("%w: %d", ErrInvalidDedupMode, o.Dedup)
	}
	return nil
}

// ValidateSearchSpec validates a search specification.
func ValidateSearchSpec(spec SearchSpec) error {
	if err := ValidateFields(spec.SlugFields, false); err != nil {
		return fmt.Errorf("slug: %w", err)
	}
	if err := ValidateGroupFields(spec.GroupFields); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	return ValidateOptions(spec.Options)
}

// FieldName strips a leading "$" from a field reference.
func FieldName(f string) string {
	return strings.TrimPrefix(f, "$")
}

// FieldRef returns the "$name" reference form of a field.
func FieldRef(f string) string {
	return "$" + FieldName(f)
}
