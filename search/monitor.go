package search

import "github.com/ailsahq/grantseek/core"

// SearchMonitor provides hooks to observe the ranking pipeline.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	IntentClassified(intent Intent)
	AfterVectorSearch(matches []*core.ChunkMatch)
	AfterCandidateAssembly(candidates []*core.Candidate)
	AfterFusion(results []*core.RankedResult)
	ThresholdRelaxed(from, to float64)
	AfterSelection(results []*core.RankedResult)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) IntentClassified(_ Intent)                   {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ChunkMatch)      {}
func (n *noopMonitor) AfterCandidateAssembly(_ []*core.Candidate)  {}
func (n *noopMonitor) AfterFusion(_ []*core.RankedResult)          {}
func (n *noopMonitor) ThresholdRelaxed(_, _ float64)               {}
func (n *noopMonitor) AfterSelection(_ []*core.RankedResult)       {}
func (n *noopMonitor) Finish(_ *Response)                          {}
