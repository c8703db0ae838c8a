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

package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/keyrank/core"
	"gopkg.in/yaml.v3"
)

// Branches toggles the match branches. Omitted keys stay enabled.
type Branches struct {
	Exact bool `yaml:"exact"`
	Mixed bool `yaml:"mixed"`
	Fuzzy bool `yaml:"fuzzy"`
}

// Profile is a named search configuration for one collection.
type Profile struct {
	Name       string           `yaml:"name"`
	Collection string           `yaml:"collection"`
	Slug       []string         `yaml:"slug"`
	Group      []string         `yaml:"group"`
	Properties []string         `yaml:"properties"`
	Ranges     []core.RangeSpec `yaml:"ranges"`
	Branches   Branches         `yaml:"branches"`
	Dedup      string           `yaml:"dedup"`
}

// Default returns an empty profile with every branch enabled.
func Default() *Profile {
	return &Profile{
		Branches: Branches{Exact: true, Mixed: true, Fuzzy: true},
	}
}

// Load reads and validates a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a profile. Unknown keys are rejected.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile's field lists, filters and branch settings.
func (p *Profile) Validate() error {
	if err := core.ValidateFields(p.Slug, false); err != nil {
		return fmt.Errorf("%w: slug: %w", ErrInvalidProfile, err)
	}
	if err := core.ValidateGroupFields(p.Group); err != nil {
		return fmt.Errorf("%w: group: %w", ErrInvalidProfile, err)
	}
	if err := core.ValidateFields(p.Properties, true); err != nil {
		return fmt.Errorf("%w: properties: %w", ErrInvalidProfile, err)
	}
	for i, r := range p.Ranges {
		if err := core.ValidateRange(r); err != nil {
			return fmt.Errorf("%w: range %d: %w", ErrInvalidProfile, i, err)
		}
	}
	opts, err := p.Options()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := core.ValidateOptions(opts); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return nil
}

// Options converts the branch flags and dedup mode into search options.
func (p *Profile) Options() (core.SearchOptions, error) {
	mode, err := core.ParseDedupMode(p.Dedup)
	if err != nil {
		return core.SearchOptions{}, fmt.Errorf("dedup %q: %w", p.Dedup, err)
	}
	return core.SearchOptions{
		DisableExact: !p.Branches.Exact,
		DisableMixed: !p.Branches.Mixed,
		DisableFuzzy: !p.Branches.Fuzzy,
		Dedup:        mode,
	}, nil
}

// Spec returns the keyword search part of the profile.
func (p *Profile) Spec() (core.SearchSpec, error) {
	opts, err := p.Options()
	if err != nil {
		return core.SearchSpec{}, err
	}
	return core.SearchSpec{
		SlugFields:  p.Slug,
		GroupFields: p.Group,
		Options:     opts,
	}, nil
}
