package stages

import (
	"testing"

	"github.com/poiesic/keyrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildSlugAddFields(t *testing.T) {
	got, err := BuildSlugAddFields([]string{"brand", "$model", "serial"})
	require.NoError(t, err)

	want := bson.D{{Key: "$addFields", Value: bson.D{
		{Key: "_filter._slug", Value: bson.D{
			{Key: "$toLower", Value: bson.D{{Key: "$concat", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$brand", ""}}},
				" ",
				bson.D{{Key: "$ifNull", Value: bson.A{"$model", ""}}},
				" ",
				bson.D{{Key: "$ifNull", Value: bson.A{"$serial", ""}}},
			}}}},
		}},
	}}}
	assert.Equal(t, want, got)
}

func TestBuildSlugAddFields_SingleField(t *testing.T) {
	got, err := BuildSlugAddFields([]string{"name"})
	require.NoError(t, err)

	concat := got[0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.A)
	assert.Len(t, concat, 1, "no separator after the last field")
}

func TestBuildSlugAddFields_InvalidArguments(t *testing.T) {
	_, err := BuildSlugAddFields(nil)
	assert.ErrorIs(t, err, core.ErrInvalidFields)

	_, err = BuildSlugAddFields([]string{"name", " "})
	assert.ErrorIs(t, err, core.ErrInvalidFields)
}

func TestBuildGroupByIDWithFirst(t *testing.T) {
	got, err := BuildGroupByIDWithFirst([]string{"brand", "$year"})
	require.NoError(t, err)

	want := bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$_id"},
		{Key: "_filter", Value: bson.D{{Key: "$first", Value: bson.D{{Key: "_score", Value: "$_filter._score"}}}}},
		{Key: "brand", Value: bson.D{{Key: "$first", Value: "$brand"}}},
		{Key: "year", Value: bson.D{{Key: "$first", Value: "$year"}}},
	}}}
	assert.Equal(t, want, got)
}

func TestBuildGroupByIDWithFirst_InvalidArguments(t *testing.T) {
	empty, err := BuildGroupByIDWithFirst(nil)
	require.NoError(t, err)
	assert.Len(t, empty[0].Value.(bson.D), 2)

	for _, props := range [][]string{{""}, {"a.b"}, {"_id"}, {"_filter"}} {
		_, err := BuildGroupByIDWithFirst(props)
		assert.ErrorIs(t, err, core.ErrInvalidFields, "%v", props)
	}
}
