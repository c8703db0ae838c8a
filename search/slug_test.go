package search

import (
	"testing"

	"github.com/poiesic/keyrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildSlug(t *testing.T) {
	tests := []struct {
		name   string
		record core.Record
		fields []string
		want   string
	}{
		{"single field", core.Record{"name": "Ana LOPEZ"}, []string{"name"}, "ana lopez"},
		{"joined with spaces", core.Record{"a": "X", "b": "Y"}, []string{"a", "b"}, "x y"},
		{"missing field is empty", core.Record{"b": "Y"}, []string{"a", "b"}, " y"},
		{"null field is empty", core.Record{"a": nil, "b": "Y"}, []string{"a", "b"}, " y"},
		{"dollar prefix", core.Record{"a": "X"}, []string{"$a"}, "x"},
		{"nested map", core.Record{"d": bson.M{"e": "Deep"}}, []string{"d.e"}, "deep"},
		{"nested document", core.Record{"d": bson.D{{Key: "e", Value: "Ordered"}}}, []string{"d.e"}, "ordered"},
		{"path through scalar", core.Record{"d": "flat"}, []string{"d.e"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildSlug(tt.record, tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSlug_NonString(t *testing.T) {
	_, err := buildSlug(core.Record{"n": 3.5}, []string{"n"})
	assert.ErrorIs(t, err, ErrSlugFieldType)
}

func TestCarry(t *testing.T) {
	got := carry(core.Record{"a": 1, "b": "two", "c": true}, []string{"a", "$b", "z"})
	assert.Equal(t, bson.M{"a": 1, "b": "two", "z": nil}, got)
}
