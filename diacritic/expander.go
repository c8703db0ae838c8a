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

package diacritic

import (
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Expander rewrites an escaped, lower-cased pattern fragment so every letter
// matches its diacritic variants.
type Expander interface {
	Expand(fragment string) string
}

// ExpanderFunc adapts a plain function to the Expander interface.
type ExpanderFunc func(string) string

// Expand calls f(fragment).
func (f ExpanderFunc) Expand(fragment string) string {
	return f(fragment)
}

// Identity leaves fragments untouched.
var Identity Expander = ExpanderFunc(func(s string) string { return s })

// Table is an immutable letter-to-class mapping.
type Table struct {
	classes map[rune]string // base letter -> "[base variants...]"
	bases   map[rune]rune   // any member of a class -> its base letter
}

var _ Expander = (*Table)(nil)

// NewTable builds a table from base letters to their variants. Bases and
// variants are expected in lower case. Variants are deduplicated and ordered
// by code point so the generated classes are deterministic.
func NewTable(variants map[rune][]rune) *Table {
	t := &Table{
		classes: make(map[rune]string, len(variants)),
		bases:   make(map[rune]rune),
	}
	for base, vs := range variants {
		members := make([]rune, 0, len(vs))
		for _, v := range vs {
			if v != base && !slices.Contains(members, v) {
				members = append(members, v)
			}
		}
		if len(members) == 0 {
			continue
		}
		slices.Sort(members)

		var b strings.Builder
		b.WriteByte('[')
		b.WriteRune(base)
		for _, v := range members {
			b.WriteRune(v)
			t.bases[v] = base
		}
		b.WriteByte(']')

		t.classes[base] = b.String()
		t.bases[base] = base
	}
	return t
}

// Expand replaces every letter that has variants with its character class.
// Accented input letters expand to the class of their base letter, so "josé"
// and "jose" produce the same fragment. Escape sequences are left alone since
// escaping only ever prefixes punctuation.
func (t *Table) Expand(fragment string) string {
	if fragment == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(fragment))
	for _, r := range fragment {
		if base, ok := t.bases[r]; ok {
			b.WriteString(t.classes[base])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Class returns the character class for r, or false when r has no variants.
func (t *Table) Class(r rune) (string, bool) {
	base, ok := t.bases[r]
	if !ok {
		return "", false
	}
	return t.classes[base], true
}

// Latin returns the shared default table. It is built on first use and never
// modified afterwards.
var Latin = sync.OnceValue(buildLatin)

// Unicode blocks scanned for decomposable letters: Latin-1 Supplement,
// Latin Extended-A and Latin Extended-B.
const (
	latinFirst = 0x00C0
	latinLast  = 0x024F
)

func buildLatin() *Table {
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	variants := make(map[rune][]rune)
	for r := rune(latinFirst); r <= latinLast; r++ {
		if !unicode.IsLetter(r) {
			continue
		}
		lower := unicode.ToLower(r)
		folded, _, err := transform.String(strip, string(lower))
		if err != nil || utf8.RuneCountInString(folded) != 1 {
			continue
		}
		base, _ := utf8.DecodeRuneInString(folded)
		if base == lower || base < 'a' || base > 'z' {
			continue
		}
		variants[base] = append(variants[base], lower)
	}
	return NewTable(variants)
}
