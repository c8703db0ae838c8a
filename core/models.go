package core

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field paths written by the search stages. The slug and the score share the
// _filter sub-document so a single projection can strip both.
const (
	FilterField = "_filter"
	SlugPath    = "_filter._slug"
	ScorePath   = "_filter._score"
	IDField     = "_id"
)

// Tier identifies one of the three match strictness levels.
type Tier int

const (
	// TierFuzzy requires every distinct query character to appear somewhere.
	TierFuzzy Tier = iota + 1
	// TierMixed requires any one token to appear as a substring.
	TierMixed
	// TierExact requires every token to appear as a whole word.
	TierExact
)

// Fixed branch scores. They are ordinals, not relevance magnitudes.
const (
	ScoreFuzzy = 1
	ScoreMixed = 2
	ScoreExact = 3
)

// Tiers lists the tiers in branch order, strictest first.
var Tiers = []Tier{TierExact, TierMixed, TierFuzzy}

// String returns the branch name used as the facet key.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierMixed:
		return "mixed"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// Score returns the fixed score tagged onto records surviving the tier's branch.
func (t Tier) Score() int {
	switch t {
	case TierExact:
		return ScoreExact
	case TierMixed:
		return ScoreMixed
	case TierFuzzy:
		return ScoreFuzzy
	default:
		return 0
	}
}

// DedupMode selects which copy of a record survives when it matched more than one branch.
type DedupMode int

const (
	// DedupMaxScore keeps the copy from the highest scoring branch.
	DedupMaxScore DedupMode = iota
	// DedupFirstEncountered keeps whichever copy the merge step sees first.
	DedupFirstEncountered
)

// String returns the profile spelling of the mode.
func (m DedupMode) String() string {
	switch m {
	case DedupMaxScore:
		return "max-score"
	case DedupFirstEncountered:
		return "first"
	default:
		return "unknown"
	}
}

// ParseDedupMode parses the profile spelling of a dedup mode. Empty selects DedupMaxScore.
func ParseDedupMode(s string) (DedupMode, error) {
	switch s {
	case "", "max-score":
		return DedupMaxScore, nil
	case "first":
		return DedupFirstEncountered, nil
	default:
		return 0, ErrInvalidDedupMode
	}
}

// SearchOptions toggles branches and the dedup policy.
// The zero value enables all three branches and keeps the maximum score per record.
type SearchOptions struct {
	DisableExact bool
	DisableMixed bool
	DisableFuzzy bool
	Dedup        DedupMode
}

// Enabled reports whether the branch for tier t takes part in the search.
func (o SearchOptions) Enabled(t Tier) bool {
	switch t {
	case TierExact:
		return !o.DisableExact
	case TierMixed:
		return !o.DisableMixed
	case TierFuzzy:
		return !o.DisableFuzzy
	default:
		return false
	}
}

// EnabledTiers returns the enabled tiers in branch order.
func (o SearchOptions) EnabledTiers() []Tier {
	tiers := make([]Tier, 0, len(Tiers))
	for _, t := range Tiers {
		if o.Enabled(t) {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

// SearchSpec describes which fields a keyword search reads and returns.
type SearchSpec struct {
	// SlugFields are concatenated, space separated and lower-cased into the slug.
	SlugFields []string
	// GroupFields are carried through the dedup step.
	GroupFields []string
	Options     SearchOptions
}

// Operator is a comparison operator accepted by range filters.
type Operator string

const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
)

// RangeSpec maps a request parameter onto a numeric condition.
type RangeSpec struct {
	Name  string   `yaml:"name"`  // parameter name
	Field string   `yaml:"field"` // document field
	Cond  Operator `yaml:"cond"`
}

// Record is a schemaless document as stored and returned by the database.
type Record bson.M

// ID returns the record's ObjectID, if it has one.
func (r Record) ID() (primitive.ObjectID, bool) {
	id, ok := r[IDField].(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}

// ScoredRecord is a deduplicated search hit.
type ScoredRecord struct {
	ID     primitive.ObjectID
	Tier   Tier
	Score  int
	Fields bson.M // fields carried through the dedup step
}

// TierForScore maps a branch score back to its tier.
func TierForScore(score int) Tier {
	switch score {
	case ScoreExact:
		return TierExact
	case ScoreMixed:
		return TierMixed
	case ScoreFuzzy:
		return TierFuzzy
	default:
		return 0
	}
}
