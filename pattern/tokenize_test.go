package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "collapses whitespace", text: "  John   Doe ", want: []string{"John", "Doe"}},
		{name: "empty", text: "", want: []string{}},
		{name: "only spaces", text: " \t\n ", want: []string{}},
		{name: "drops single characters", text: "a b cd", want: []string{"cd"}},
		{name: "keeps duplicates in order", text: "ana lopez ana", want: []string{"ana", "lopez", "ana"}},
		{name: "counts runes not bytes", text: "é ño", want: []string{"ño"}},
		{name: "tabs and newlines", text: "foo\tbar\nbaz", want: []string{"foo", "bar", "baz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}
