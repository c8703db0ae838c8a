package pattern

import (
	"strings"
	"unicode/utf8"
)

// MinTokenLength is the shortest token, in runes, kept by Tokenize.
const MinTokenLength = 2

// Tokenize splits text on whitespace and drops pieces shorter than MinTokenLength.
// Order and duplicates are preserved.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
