// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stages

import (
	"github.com/poiesic/keyrank/core"
	"go.mongodb.org/mongo-driver/bson"
)

const resultsField = "results"

func unwindStage(field string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "preserveNullAndEmptyArrays", Value: true},
		{Key: "path", Value: "$" + field},
	}}}
}

func scoresStage(tiers []core.Tier) bson.D {
	fields := make(bson.D, 0, len(tiers))
	for _, t := range tiers {
		fields = append(fields, bson.E{Key: t.String() + "." + core.ScorePath, Value: t.Score()})
	}
	return bson.D{{Key: "$addFields", Value: fields}}
}

func groupScoresStage(tiers []core.Tier) bson.D {
	group := bson.D{{Key: core.IDField, Value: "$" + core.IDField}}
	for _, t := range tiers {
		group = append(group, bson.E{Key: t.String(), Value: bson.D{{Key: "$addToSet", Value: "$" + t.String()}}})
	}
	return bson.D{{Key: "$group", Value: group}}
}

func concatResultsStage(tiers []core.Tier) bson.D {
	arrays := make(bson.A, 0, len(tiers))
	for _, t := range tiers {
		arrays = append(arrays, bson.D{{Key: "$ifNull", Value: bson.A{"$" + t.String(), bson.A{}}}})
	}
	return bson.D{{Key: "$project", Value: bson.D{
		{Key: resultsField, Value: bson.D{{Key: "$concatArrays", Value: arrays}}},
	}}}
}

func replaceRootStage() bson.D {
	return bson.D{{Key: "$replaceRoot", Value: bson.D{
		{Key: "newRoot", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + resultsField, bson.A{}}}}},
	}}}
}

func notNullStage() bson.D {
	return bson.D{{Key: "$match", Value: bson.D{
		{Key: core.IDField, Value: bson.D{{Key: "$ne", Value: nil}}},
	}}}
}

// ScoreSortStage sorts by descending branch score.
func ScoreSortStage() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: core.ScorePath, Value: -1}}}}
}
