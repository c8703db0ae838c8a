package stages

import (
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/pattern"
	"go.mongodb.org/mongo-driver/bson"
)

// BuildKeywordsSearch returns the stage sequence that ranks candidates against
// query. slugStage must attach _filter._slug; groupStage must collapse records
// by _id and carry _filter._score forward. A nil compiler uses the defaults.
//
// Disabled branches are left out of every stage that names them. With
// DedupMaxScore a score sort is placed in front of groupStage so that its $first
// accumulators see the highest scoring copy of each record; DedupFirstEncountered
// omits that sort and keeps whichever copy the merge produced first.
func BuildKeywordsSearch(compiler *pattern.Compiler, query string, slugStage, groupStage bson.D, opts core.SearchOptions) ([]bson.D, error) {
	if len(slugStage) == 0 {
		return nil, ErrSlugStageRequired
	}
	if len(groupStage) == 0 {
		return nil, ErrGroupStageRequired
	}
	if err := core.ValidateOptions(opts); err != nil {
		return nil, err
	}
	if compiler == nil {
		compiler = pattern.NewCompiler()
	}

	preds := compiler.CompileQuery(query, opts)
	tiers := make([]core.Tier, len(preds))
	facet := make(bson.D, 0, len(preds))
	for i, p := range preds {
		tiers[i] = p.Tier
		facet = append(facet, bson.E{Key: p.Tier.String(), Value: bson.A{matchSlugStage(p)}})
	}

	stages := make([]bson.D, 0, 14)
	stages = append(stages, slugStage, bson.D{{Key: "$facet", Value: facet}})
	for _, t := range tiers {
		stages = append(stages, unwindStage(t.String()))
	}
	stages = append(stages,
		scoresStage(tiers),
		groupScoresStage(tiers),
		concatResultsStage(tiers),
		unwindStage(resultsField),
		replaceRootStage(),
	)
	if opts.Dedup == core.DedupMaxScore {
		stages = append(stages, ScoreSortStage())
	}
	stages = append(stages, groupStage, notNullStage(), ScoreSortStage())
	return stages, nil
}

// BuildSearch builds the slug and group stages from spec and assembles the
// keyword search around them.
func BuildSearch(compiler *pattern.Compiler, query string, spec core.SearchSpec) ([]bson.D, error) {
	slug, err := BuildSlugAddFields(spec.SlugFields)
	if err != nil {
		return nil, err
	}
	group, err := BuildGroupByIDWithFirst(spec.GroupFields)
	if err != nil {
		return nil, err
	}
	return BuildKeywordsSearch(compiler, query, slug, group, spec.Options)
}

func matchSlugStage(p pattern.Predicate) bson.D {
	return bson.D{{Key: "$match", Value: bson.D{{Key: core.SlugPath, Value: p.Regex()}}}}
}
