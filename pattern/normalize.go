package pattern

import (
	"regexp"
	"strings"

	"github.com/poiesic/keyrank/diacritic"
)

// Normalizer produces diacritic-insensitive pattern fragments.
type Normalizer struct {
	expander diacritic.Expander
}

// NewNormalizer creates a normalizer around expander. A nil expander falls
// back to diacritic.Latin().
func NewNormalizer(expander diacritic.Expander) Normalizer {
	if expander == nil {
		expander = diacritic.Latin()
	}
	return Normalizer{expander: expander}
}

// Normalize escapes pattern metacharacters, lower-cases and expands diacritics.
// Empty input yields an empty fragment.
func (n Normalizer) Normalize(token string) string {
	if token == "" {
		return ""
	}
	escaped := strings.ToLower(regexp.QuoteMeta(token))
	return n.expander.Expand(escaped)
}
