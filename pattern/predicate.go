package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegexOptions are the flags attached to every emitted regular expression.
const RegexOptions = "i"

// DefaultMatchTimeout bounds a single in-process match.
const DefaultMatchTimeout = 250 * time.Millisecond

// Predicate is a compiled tier pattern. It is immutable and safe to share.
type Predicate struct {
	Tier    core.Tier
	Pattern string
}

// Regex returns the predicate as a BSON regular expression.
func (p Predicate) Regex() primitive.Regex {
	return primitive.Regex{Pattern: p.Pattern, Options: RegexOptions}
}

// String implements fmt.Stringer using the /pattern/flags form.
func (p Predicate) String() string {
	return fmt.Sprintf("%s:/%s/%s", p.Tier, p.Pattern, RegexOptions)
}

// asciiBoundary is \b restricted to ASCII word characters, which is how the
// database's regex engine treats \b by default.
const asciiBoundary = `(?:(?<![0-9A-Za-z_])(?=[0-9A-Za-z_])|(?<=[0-9A-Za-z_])(?![0-9A-Za-z_]))`

// Compile builds an in-process matcher with the same case-insensitive semantics.
func (p Predicate) Compile() (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(localPattern(p.Pattern), regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("compile %s pattern: %w", p.Tier, err)
	}
	re.MatchTimeout = DefaultMatchTimeout
	return re, nil
}

// MatchString compiles the predicate and tests s. Use Compile when matching
// many strings.
func (p Predicate) MatchString(s string) (bool, error) {
	re, err := p.Compile()
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}

// localPattern rewrites unescaped \b so regexp2 does not treat accented
// letters as word characters.
func localPattern(pattern string) string {
	if !strings.Contains(pattern, `\b`) {
		return pattern
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '\\' || i+1 == len(pattern) {
			b.WriteByte(pattern[i])
			continue
		}
		if pattern[i+1] == 'b' {
			b.WriteString(asciiBoundary)
		} else {
			b.WriteByte(pattern[i])
			b.WriteByte(pattern[i+1])
		}
		i++
	}
	return b.String()
}
