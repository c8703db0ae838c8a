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

// Package keyrank builds MongoDB aggregation pipelines for tiered,
// diacritic-insensitive keyword search and evaluates the same search locally
// over an embedded store.
package keyrank

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/diacritic"
	"github.com/poiesic/keyrank/pattern"
	"github.com/poiesic/keyrank/profile"
	"github.com/poiesic/keyrank/stages"
	"go.mongodb.org/mongo-driver/bson"
)

// ExcludeParam is the request parameter listing ObjectIDs to leave out.
// Several IDs may be given as repeated parameters or comma separated.
const ExcludeParam = "exclude"

// Engine exposes tokenizing, predicate compilation and pipeline assembly
// behind one configured value. It is safe for concurrent use.
type Engine struct {
	compiler *pattern.Compiler
	options  core.SearchOptions
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithExpander sets the diacritic expander used when compiling predicates.
// Default is diacritic.Latin().
func WithExpander(expander diacritic.Expander) Option {
	return func(e *Engine) {
		e.compiler = pattern.NewCompiler(pattern.WithExpander(expander))
	}
}

// WithOptions sets the branch and dedup options used by BuildSearch.
func WithOptions(opts core.SearchOptions) Option {
	return func(e *Engine) {
		e.options = opts
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		compiler: pattern.NewCompiler(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compiler returns the engine's predicate compiler.
func (e *Engine) Compiler() *pattern.Compiler {
	return e.compiler
}

// Tokenize splits a query into search tokens.
func (e *Engine) Tokenize(text string) []string {
	return pattern.Tokenize(text)
}

// CompileExact builds the whole-word, all-tokens predicate.
func (e *Engine) CompileExact(tokens []string) pattern.Predicate {
	return e.compiler.Exact(tokens)
}

// CompileMixed builds the any-token substring predicate.
func (e *Engine) CompileMixed(tokens []string) pattern.Predicate {
	return e.compiler.Mixed(tokens)
}

// CompileFuzzy builds the every-character predicate.
func (e *Engine) CompileFuzzy(tokens []string) pattern.Predicate {
	return e.compiler.Fuzzy(tokens)
}

// BuildSearch assembles the keyword search stages around caller supplied
// slug and group stages, using the engine's options.
func (e *Engine) BuildSearch(query string, slugStage, groupStage bson.D) ([]bson.D, error) {
	pipeline, err := stages.BuildKeywordsSearch(e.compiler, query, slugStage, groupStage, e.options)
	if err != nil {
		return nil, err
	}
	e.logPipeline("keyword search", query, pipeline)
	return pipeline, nil
}

// BuildSpecSearch builds the slug and group stages from spec and assembles the
// keyword search. spec.Options replaces the engine's options.
func (e *Engine) BuildSpecSearch(query string, spec core.SearchSpec) ([]bson.D, error) {
	pipeline, err := stages.BuildSearch(e.compiler, query, spec)
	if err != nil {
		return nil, err
	}
	e.logPipeline("keyword search", query, pipeline)
	return pipeline, nil
}

// BuildProfilePipeline builds the full pipeline for a profile: the presence,
// range and exclusion filters selected by params, followed by the keyword
// search. Filters that would add no condition are left out.
func (e *Engine) BuildProfilePipeline(p *profile.Profile, query string, params url.Values) ([]bson.D, error) {
	spec, err := p.Spec()
	if err != nil {
		return nil, err
	}

	pipeline := make([]bson.D, 0, 17)
	if props := stages.BuildFilterByProperties(p.Properties, params); !stages.IsEmptyMatch(props) {
		pipeline = append(pipeline, props)
	}
	ranges, err := stages.BuildFilterByRange(p.Ranges, params)
	if err != nil {
		return nil, err
	}
	if !stages.IsEmptyMatch(ranges) {
		pipeline = append(pipeline, ranges)
	}
	if ids := excludedIDs(params); len(ids) > 0 {
		pipeline = append(pipeline, stages.BuildExcludeByID(ids))
	}

	search, err := stages.BuildSearch(e.compiler, query, spec)
	if err != nil {
		return nil, err
	}
	pipeline = append(pipeline, search...)
	e.logPipeline("profile "+p.Name, query, pipeline)
	return pipeline, nil
}

func (e *Engine) logPipeline(kind, query string, pipeline []bson.D) {
	fingerprint, err := core.Fingerprint(pipeline)
	if err != nil {
		e.logger.Warn("could not fingerprint pipeline", "err", err)
		return
	}
	e.logger.Debug("built pipeline", "kind", kind, "query", query, "stages", len(pipeline), "fingerprint", fingerprint)
}

func excludedIDs(params url.Values) []string {
	var ids []string
	for _, v := range params[ExcludeParam] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
