package stages

import (
	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
)

// BuildSlugAddFields projects the lower-cased, space-joined value of fields into
// _filter._slug. Missing fields contribute an empty string. Names may be given
// with or without the "$" prefix.
func BuildSlugAddFields(fields []string) (bson.D, error) {
	if err := core.ValidateFields(fields, false); err != nil {
		return nil, err
	}

	concat := make(bson.A, 0, 2*len(fields)-1)
	for i, f := range fields {
		concat = append(concat, bson.D{{Key: "$ifNull", Value: bson.A{core.FieldRef(f), ""}}})
		if i+1 < len(fields) {
			concat = append(concat, " ")
		}
	}

	return bson.D{{Key: "$addFields", Value: bson.D{
		{Key: core.SlugPath, Value: bson.D{
			{Key: "$toLower", Value: bson.D{{Key: "$concat", Value: concat}}},
		}},
	}}}, nil
}
