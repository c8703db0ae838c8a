package stages

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrueValue is the parameter value that selects "field is set".
const TrueValue = "true"

// BuildFilterByProperties filters on field presence. For every property present
// in params, the value "true" requires the field to be non-null and anything
// else requires it to be null. Absent properties add no condition.
func BuildFilterByProperties(props []string, params url.Values) bson.D {
	match := bson.D{}
	for _, p := range props {
		if _, ok := params[p]; !ok {
			continue
		}
		if params.Get(p) == TrueValue {
			match = append(match, bson.E{Key: p, Value: bson.D{{Key: "$ne", Value: nil}}})
		} else {
			match = append(match, bson.E{Key: p, Value: nil})
		}
	}
	return bson.D{{Key: "$match", Value: match}}
}

// BuildFilterByRange adds a numeric condition for every range whose parameter
// parses to a positive integer. Unparseable and non-positive values are skipped.
// Conditions on the same field are merged into one document.
func BuildFilterByRange(ranges []core.RangeSpec, params url.Values) (bson.D, error) {
	for _, r := range ranges {
		if err := core.ValidateRange(r); err != nil {
			return nil, err
		}
	}

	match := bson.D{}
	index := make(map[string]int)
	for _, r := range ranges {
		if _, ok := params[r.Name]; !ok {
			continue
		}
		value, ok := parseLeadingInt(params.Get(r.Name))
		if !ok || value <= 0 {
			continue
		}
		cond := bson.E{Key: string(r.Cond), Value: numeric(value)}
		if i, seen := index[r.Field]; seen {
			match[i].Value = append(match[i].Value.(bson.D), cond)
			continue
		}
		index[r.Field] = len(match)
		match = append(match, bson.E{Key: r.Field, Value: bson.D{cond}})
	}
	return bson.D{{Key: "$match", Value: match}}, nil
}

// BuildExcludeByID excludes the given ObjectIDs. Values that are not 24-digit
// hex ObjectIDs are dropped.
func BuildExcludeByID(ids []string) bson.D {
	nin := bson.A{}
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
		if err != nil {
			continue
		}
		nin = append(nin, oid)
	}
	return bson.D{{Key: "$match", Value: bson.D{
		{Key: core.IDField, Value: bson.D{{Key: "$nin", Value: nin}}},
	}}}
}

// IsEmptyMatch reports whether stage is a $match with no conditions.
func IsEmptyMatch(stage bson.D) bool {
	if len(stage) != 1 || stage[0].Key != "$match" {
		return false
	}
	cond, ok := stage[0].Value.(bson.D)
	return ok && len(cond) == 0
}

// parseLeadingInt reads an optionally signed run of digits at the start of s,
// ignoring leading whitespace and anything after the digits. A 0x prefix
// selects hexadecimal. Values out of int64 range saturate.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	sign := s[:end]
	base, isDigit := 10, isDecimal
	if len(s) > end+1 && s[end] == '0' && (s[end+1] == 'x' || s[end+1] == 'X') {
		end += 2
		base, isDigit = 16, isHex
	}
	start := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == start {
		return 0, false
	}
	v, err := strconv.ParseInt(sign+s[start:end], base, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// numeric narrows v to int32 when it fits so small values encode as BSON int.
func numeric(v int64) any {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}
	return v
}
