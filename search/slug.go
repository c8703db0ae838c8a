package search

import (
	"fmt"
	"strings"

	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
)

// buildSlug joins the named fields of record with single spaces and lower-cases
// the result. Missing and null fields contribute an empty string.
func buildSlug(record core.Record, fields []string) (string, error) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		name := core.FieldName(f)
		v, _ := lookup(record, name)
		switch s := v.(type) {
		case nil:
		case string:
			parts[i] = s
		default:
			return "", fmt.Errorf("%w: %s is %T", ErrSlugFieldType, name, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " ")), nil
}

// lookup resolves a dotted path against nested documents.
func lookup(doc any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	var v any
	var ok bool
	switch d := doc.(type) {
	case core.Record:
		v, ok = d[head]
	case bson.M:
		v, ok = d[head]
	case map[string]any:
		v, ok = d[head]
	case bson.D:
		for _, e := range d {
			if e.Key == head {
				v, ok = e.Value, true
				break
			}
		}
	}
	if !ok || !nested {
		return v, ok
	}
	return lookup(v, rest)
}

// carry copies the group fields of record. Absent fields are carried as nil,
// the way $first reports a missing path.
func carry(record core.Record, fields []string) bson.M {
	out := make(bson.M, len(fields))
	for _, f := range fields {
		name := core.FieldName(f)
		v, _ := lookup(record, name)
		out[name] = v
	}
	return out
}
