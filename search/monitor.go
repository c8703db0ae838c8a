package search

import (
	"github.com/poiesic/keyrank/core"
	"github.com/poiesic/keyrank/pattern"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterTokenize(tokens []string)
	AfterCompile(predicates []pattern.Predicate)
	AfterRecordRetrieval(records []core.Record)
	BranchHit(tier core.Tier, record core.Record)
	AfterMerge(hits int, unique int)
	Finish(results []*core.ScoredRecord)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterTokenize(_ []string)             {}
func (n *noopMonitor) AfterCompile(_ []pattern.Predicate)   {}
func (n *noopMonitor) AfterRecordRetrieval(_ []core.Record) {}
func (n *noopMonitor) BranchHit(_ core.Tier, _ core.Record) {}
func (n *noopMonitor) AfterMerge(_ int, _ int)              {}
func (n *noopMonitor) Finish(_ []*core.ScoredRecord)        {}
