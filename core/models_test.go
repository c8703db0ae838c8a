package core

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTier_ScoreAndString(t *testing.T) {
	tests := []struct {
		name      string
		tier      Tier
		wantScore int
		wantName  string
	}{
		{name: "exact", tier: TierExact, wantScore: 3, wantName: "exact"},
		{name: "mixed", tier: TierMixed, wantScore: 2, wantName: "mixed"},
		{name: "fuzzy", tier: TierFuzzy, wantScore: 1, wantName: "fuzzy"},
		{name: "zero value", tier: Tier(0), wantScore: 0, wantName: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tier.Score(); got != tt.wantScore {
				t.Errorf("Tier.Score() = %d, want %d", got, tt.wantScore)
			}
			if got := tt.tier.String(); got != tt.wantName {
				t.Errorf("Tier.String() = %q, want %q", got, tt.wantName)
			}
			if tt.wantScore > 0 && TierForScore(tt.wantScore) != tt.tier {
				t.Errorf("TierForScore(%d) = %v, want %v", tt.wantScore, TierForScore(tt.wantScore), tt.tier)
			}
		})
	}
}

func TestSearchOptions_EnabledTiers(t *testing.T) {
	tests := []struct {
		name string
		opts SearchOptions
		want []Tier
	}{
		{name: "zero value enables all", opts: SearchOptions{}, want: []Tier{TierExact, TierMixed, TierFuzzy}},
		{name: "fuzzy disabled", opts: SearchOptions{DisableFuzzy: true}, want: []Tier{TierExact, TierMixed}},
		{name: "exact disabled", opts: SearchOptions{DisableExact: true}, want: []Tier{TierMixed, TierFuzzy}},
		{name: "all disabled", opts: SearchOptions{DisableExact: true, DisableMixed: true, DisableFuzzy: true}, want: []Tier{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.EnabledTiers()
			if len(got) != len(tt.want) {
				t.Fatalf("EnabledTiers() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("EnabledTiers()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseDedupMode(t *testing.T) {
	for _, s := range []string{"", "max-score"} {
		if m, err := ParseDedupMode(s); err != nil || m != DedupMaxScore {
			t.Errorf("ParseDedupMode(%q) = %v, %v", s, m, err)
		}
	}
	if m, err := ParseDedupMode("first"); err != nil || m != DedupFirstEncountered {
		t.Errorf("ParseDedupMode(first) = %v, %v", m, err)
	}
	if _, err := ParseDedupMode("newest"); err != ErrInvalidDedupMode {
		t.Errorf("ParseDedupMode(newest) error = %v, want %v", err, ErrInvalidDedupMode)
	}
	if DedupFirstEncountered.String() != "first" || DedupMaxScore.String() != "max-score" {
		t.Errorf("DedupMode.String() does not round trip")
	}
}

func TestRecord_ID(t *testing.T) {
	oid := primitive.NewObjectID()

	if id, ok := (Record{"_id": oid}).ID(); !ok || id != oid {
		t.Errorf("Record.ID() = %v, %v, want %v", id, ok, oid)
	}
	if _, ok := (Record{"_id": "not-an-oid"}).ID(); ok {
		t.Errorf("Record.ID() accepted a string id")
	}
	if _, ok := (Record{"name": "x"}).ID(); ok {
		t.Errorf("Record.ID() reported an id for a record without one")
	}
	if _, ok := (Record{"_id": primitive.NilObjectID}).ID(); ok {
		t.Errorf("Record.ID() accepted the nil ObjectID")
	}
}

func TestFingerprint(t *testing.T) {
	a := []bson.D{{{Key: "$match", Value: bson.D{{Key: "a", Value: 1}}}}}
	b := []bson.D{{{Key: "$match", Value: bson.D{{Key: "a", Value: 1}}}}}
	c := []bson.D{{{Key: "$match", Value: bson.D{{Key: "a", Value: 2}}}}}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	fb, _ := Fingerprint(b)
	fc, _ := Fingerprint(c)

	if len(fa) != 16 {
		t.Errorf("Fingerprint() length = %d, want 16 hex chars", len(fa))
	}
	if fa != fb {
		t.Errorf("Fingerprint() differs for identical pipelines: %s vs %s", fa, fb)
	}
	if fa == fc {
		t.Errorf("Fingerprint() identical for different pipelines")
	}
}
