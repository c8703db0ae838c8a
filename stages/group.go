package stages

import (
	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
)

// BuildGroupByIDWithFirst collapses records sharing an _id into one, keeping the
// first value of each listed property and of the score. The slug is not carried.
func BuildGroupByIDWithFirst(props []string) (bson.D, error) {
	if err := core.ValidateGroupFields(props); err != nil {
		return nil, err
	}

	group := bson.D{
		{Key: core.IDField, Value: "$" + core.IDField},
		{Key: core.FilterField, Value: bson.D{{Key: "$first", Value: bson.D{
			{Key: "_score", Value: "$" + core.ScorePath},
		}}}},
	}
	for _, p := range props {
		name := core.FieldName(p)
		group = append(group, bson.E{Key: name, Value: bson.D{{Key: "$first", Value: "$" + name}}})
	}
	return bson.D{{Key: "$group", Value: group}}, nil
}
