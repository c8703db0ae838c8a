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

package pattern

import (
	"strings"

	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/diacritic"
)

// Compiler turns token lists into tier predicates.
// A Compiler holds no mutable state and may be shared between goroutines.
type Compiler struct {
	normalizer Normalizer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithExpander sets the diacritic expander.
// Default is diacritic.Latin().
func WithExpander(expander diacritic.Expander) Option {
	return func(c *Compiler) {
		c.normalizer = NewNormalizer(expander)
	}
}

// NewCompiler creates a compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{normalizer: NewNormalizer(nil)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize exposes the compiler's normalizer.
func (c *Compiler) Normalize(token string) string {
	return c.normalizer.Normalize(token)
}

// Exact requires every token as a whole word, in any order.
func (c *Compiler) Exact(tokens []string) Predicate {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(`(?=.*\b`)
		b.WriteString(c.normalizer.Normalize(tok))
		b.WriteString(`)`)
	}
	return Predicate{Tier: core.TierExact, Pattern: b.String()}
}

// Mixed requires at least one token anywhere in the text.
func (c *Compiler) Mixed(tokens []string) Predicate {
	fragments := make([]string, len(tokens))
	for i, tok := range tokens {
		fragments[i] = c.normalizer.Normalize(tok)
	}
	return Predicate{Tier: core.TierMixed, Pattern: strings.Join(fragments, "|")}
}

// Fuzzy requires every distinct character of the concatenated tokens somewhere
// in the text, with no ordering or adjacency constraint. Characters are
// deduplicated by their normalized fragment, so "á" and "a" count once.
func (c *Compiler) Fuzzy(tokens []string) Predicate {
	seen := make(map[string]bool)
	var b strings.Builder
	for _, r := range strings.Join(tokens, "") {
		frag := c.normalizer.Normalize(string(r))
		if seen[frag] {
			continue
		}
		seen[frag] = true
		b.WriteString(`(?=.*`)
		b.WriteString(frag)
		b.WriteString(`)`)
	}
	return Predicate{Tier: core.TierFuzzy, Pattern: b.String()}
}

// Compile dispatches to the tier's compilation mode.
func (c *Compiler) Compile(tier core.Tier, tokens []string) (Predicate, error) {
	switch tier {
	case core.TierExact:
		return c.Exact(tokens), nil
	case core.TierMixed:
		return c.Mixed(tokens), nil
	case core.TierFuzzy:
		return c.Fuzzy(tokens), nil
	default:
		return Predicate{}, ErrUnknownTier
	}
}

// CompileQuery tokenizes text and compiles a predicate for every enabled tier,
// in branch order.
func (c *Compiler) CompileQuery(text string, opts core.SearchOptions) []Predicate {
	tokens := Tokenize(text)
	tiers := opts.EnabledTiers()
	preds := make([]Predicate, 0, len(tiers))
	for _, t := range tiers {
		p, _ := c.Compile(t, tokens)
		preds = append(preds, p)
	}
	return preds
}
