package stages

import (
	"testing"

	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/diacritic"
	"github.com/poiesic/keyrank/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func plainCompiler() *pattern.Compiler {
	return pattern.NewCompiler(pattern.WithExpander(diacritic.Identity))
}

func testSlugAndGroup(t *testing.T) (bson.D, bson.D) {
	t.Helper()
	slug, err := BuildSlugAddFields([]string{"name"})
	require.NoError(t, err)
	group, err := BuildGroupByIDWithFirst([]string{"name"})
	require.NoError(t, err)
	return slug, group
}

func regexMatch(pat string) bson.A {
	return bson.A{bson.D{{Key: "$match", Value: bson.D{
		{Key: "_filter._slug", Value: primitive.Regex{Pattern: pat, Options: "i"}},
	}}}}
}

func unwind(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "preserveNullAndEmptyArrays", Value: true},
		{Key: "path", Value: path},
	}}}
}

func TestBuildKeywordsSearch_FullShape(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	got, err := BuildKeywordsSearch(plainCompiler(), "ana lopez", slug, group, core.SearchOptions{})
	require.NoError(t, err)

	scoreSort := bson.D{{Key: "$sort", Value: bson.D{{Key: "_filter._score", Value: -1}}}}
	want := []bson.D{
		slug,
		{{Key: "$facet", Value: bson.D{
			{Key: "exact", Value: regexMatch(`(?=.*\bana)(?=.*\blopez)`)},
			{Key: "mixed", Value: regexMatch(`ana|lopez`)},
			{Key: "fuzzy", Value: regexMatch(`(?=.*a)(?=.*n)(?=.*l)(?=.*o)(?=.*p)(?=.*e)(?=.*z)`)},
		}}},
		unwind("$exact"),
		unwind("$mixed"),
		unwind("$fuzzy"),
		{{Key: "$addFields", Value: bson.D{
			{Key: "exact._filter._score", Value: 3},
			{Key: "mixed._filter._score", Value: 2},
			{Key: "fuzzy._filter._score", Value: 1},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$_id"},
			{Key: "exact", Value: bson.D{{Key: "$addToSet", Value: "$exact"}}},
			{Key: "mixed", Value: bson.D{{Key: "$addToSet", Value: "$mixed"}}},
			{Key: "fuzzy", Value: bson.D{{Key: "$addToSet", Value: "$fuzzy"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "results", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$exact", bson.A{}}}},
				bson.D{{Key: "$ifNull", Value: bson.A{"$mixed", bson.A{}}}},
				bson.D{{Key: "$ifNull", Value: bson.A{"$fuzzy", bson.A{}}}},
			}}}},
		}}},
		unwind("$results"),
		{{Key: "$replaceRoot", Value: bson.D{
			{Key: "newRoot", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$results", bson.A{}}}}},
		}}},
		scoreSort,
		group,
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		scoreSort,
	}
	assert.Equal(t, want, got)
}

func TestBuildKeywordsSearch_FirstEncounteredKeepsLegacyShape(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	maxScore, err := BuildKeywordsSearch(plainCompiler(), "ana", slug, group, core.SearchOptions{})
	require.NoError(t, err)
	legacy, err := BuildKeywordsSearch(plainCompiler(), "ana", slug, group, core.SearchOptions{Dedup: core.DedupFirstEncountered})
	require.NoError(t, err)

	require.Len(t, maxScore, 14)
	require.Len(t, legacy, 13)
	assert.Equal(t, "$replaceRoot", legacy[9][0].Key)
	assert.Equal(t, group, legacy[10], "the caller group stage follows $replaceRoot directly")
	assert.Equal(t, ScoreSortStage(), maxScore[10])
	assert.Equal(t, group, maxScore[11])
}

func TestBuildKeywordsSearch_DisabledBranch(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	got, err := BuildKeywordsSearch(plainCompiler(), "ana", slug, group, core.SearchOptions{DisableFuzzy: true})
	require.NoError(t, err)

	facet := got[1][0].Value.(bson.D)
	require.Len(t, facet, 2)
	assert.Equal(t, "exact", facet[0].Key)
	assert.Equal(t, "mixed", facet[1].Key)

	assert.Equal(t, unwind("$exact"), got[2])
	assert.Equal(t, unwind("$mixed"), got[3])

	scores := got[4][0].Value.(bson.D)
	assert.Equal(t, bson.D{
		{Key: "exact._filter._score", Value: 3},
		{Key: "mixed._filter._score", Value: 2},
	}, scores, "no stage may assign the fuzzy score")

	for _, stage := range got {
		ext, err := bson.MarshalExtJSON(stage, false, false)
		require.NoError(t, err)
		assert.NotContains(t, string(ext), "fuzzy")
	}
}

func TestBuildKeywordsSearch_Errors(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	_, err := BuildKeywordsSearch(nil, "ana", nil, group, core.SearchOptions{})
	assert.ErrorIs(t, err, ErrSlugStageRequired)

	_, err = BuildKeywordsSearch(nil, "ana", slug, nil, core.SearchOptions{})
	assert.ErrorIs(t, err, ErrGroupStageRequired)

	_, err = BuildKeywordsSearch(nil, "ana", slug, group, core.SearchOptions{
		DisableExact: true, DisableMixed: true, DisableFuzzy: true,
	})
	assert.ErrorIs(t, err, core.ErrNoBranches)
}

func TestBuildKeywordsSearch_EmptyQueryPassesThrough(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	got, err := BuildKeywordsSearch(plainCompiler(), "   ", slug, group, core.SearchOptions{})
	require.NoError(t, err)

	facet := got[1][0].Value.(bson.D)
	for _, branch := range facet {
		assert.Equal(t, regexMatch(""), branch.Value, branch.Key)
	}
}

func TestBuildKeywordsSearch_DefaultCompiler(t *testing.T) {
	slug, group := testSlugAndGroup(t)

	got, err := BuildKeywordsSearch(nil, "jose", slug, group, core.SearchOptions{})
	require.NoError(t, err)

	mixed := got[1][0].Value.(bson.D)[1].Value.(bson.A)[0].(bson.D)[0].Value.(bson.D)[0].Value.(primitive.Regex)
	assert.Equal(t, pattern.NewCompiler().Mixed([]string{"jose"}).Pattern, mixed.Pattern)
	assert.Contains(t, mixed.Pattern, "é")
}

func TestBuildSearch(t *testing.T) {
	spec := core.SearchSpec{SlugFields: []string{"brand", "model"}, GroupFields: []string{"brand", "model"}}
	got, err := BuildSearch(plainCompiler(), "galaxy", spec)
	require.NoError(t, err)
	require.Len(t, got, 14)
	assert.Equal(t, "$addFields", got[0][0].Key)
	assert.Equal(t, "$group", got[11][0].Key)

	_, err = BuildSearch(nil, "galaxy", core.SearchSpec{})
	assert.ErrorIs(t, err, core.ErrInvalidFields)
}

func TestBuildKeywordsSearch_MarshalsToExtendedJSON(t *testing.T) {
	slug, group := testSlugAndGroup(t)
	got, err := BuildKeywordsSearch(plainCompiler(), "ana", slug, group, core.SearchOptions{})
	require.NoError(t, err)

	ext, err := bson.MarshalExtJSON(got[1], false, false)
	require.NoError(t, err)
	assert.Equal(t,
		`{"$facet":{"exact":[{"$match":{"_filter._slug":{"$regularExpression":{"pattern":"(?=.*\\bana)","options":"i"}}}}],`+
			`"mixed":[{"$match":{"_filter._slug":{"$regularExpression":{"pattern":"ana","options":"i"}}}}],`+
			`"fuzzy":[{"$match":{"_filter._slug":{"$regularExpression":{"pattern":"(?=.*a)(?=.*n)","options":"i"}}}}]}}`,
		string(ext))
}
