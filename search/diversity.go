// Copyright 2025 Ailsa Systems
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


package search

import (
	"sort"

	"github.com/ailsahq/grantseek/core"
)

// selectDiverse greedily picks up to MaxResults results, penalizing
// candidates that repeat an already-selected source or closely overlap an
// already-selected title. Directly fetched candidates are exempt from
// penalties. Ties break on adjusted score, then raw fused score, then the
// original semantic rank, so selection is deterministic.
func selectDiverse(pool []*core.RankedResult, cfg *Config) []*core.RankedResult {
	if len(pool) == 0 {
		return nil
	}

	// A pool that already fits needs no penalty competition; directly
	// fetched candidates go first, the rest keep their fused order.
	if len(pool) <= cfg.MaxResults {
		ordered := make([]*core.RankedResult, 0, len(pool))
		for _, r := range pool {
			if r.DirectlyFetched {
				ordered = append(ordered, r)
			}
		}
		for _, r := range pool {
			if !r.DirectlyFetched {
				ordered = append(ordered, r)
			}
		}
		sortWithinGroups(ordered)
		return ordered
	}

	remaining := make([]*core.RankedResult, len(pool))
	copy(remaining, pool)
	selected := make([]*core.RankedResult, 0, cfg.MaxResults)

	for len(selected) < cfg.MaxResults && len(remaining) > 0 {
		// Re-score the remainder against what has been selected so far
		for _, r := range remaining {
			if r.DirectlyFetched {
				r.Adjusted = r.Fused
				continue
			}
			r.Adjusted = r.Fused - diversityPenalty(r, selected, cfg)
		}

		best := 0
		for i := 1; i < len(remaining); i++ {
			if betterResult(remaining[i], remaining[best]) {
				best = i
			}
		}

		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return selected
}

// diversityPenalty sums the repetition costs of picking candidate given the
// already-selected results.
func diversityPenalty(candidate *core.RankedResult, selected []*core.RankedResult, cfg *Config) float64 {
	if len(selected) == 0 {
		return 0
	}

	candTokens := tokenSet(candidate.Title)
	var penalty float64
	for _, s := range selected {
		if candidate.Source != "" && s.Source == candidate.Source {
			penalty += cfg.SameSourcePenalty * cfg.DiversityWeight
		}
		if titleOverlap(candTokens, tokenSet(s.Title)) > cfg.TitleOverlapCutoff {
			penalty += cfg.TitleOverlapPenalty * cfg.DiversityWeight
		}
	}
	return penalty
}

// betterResult reports whether a outranks b: adjusted score, then fused
// score, then original semantic rank.
func betterResult(a, b *core.RankedResult) bool {
	if a.Adjusted != b.Adjusted {
		return a.Adjusted > b.Adjusted
	}
	if a.Fused != b.Fused {
		return a.Fused > b.Fused
	}
	return a.SemanticRank < b.SemanticRank
}

// sortWithinGroups orders the direct-fetch prefix and the ranked suffix
// each by the deterministic tie-break chain.
func sortWithinGroups(results []*core.RankedResult) {
	split := 0
	for split < len(results) && results[split].DirectlyFetched {
		split++
	}
	sort.SliceStable(results[:split], func(i, j int) bool {
		return betterResult(results[i], results[j])
	})
	sort.SliceStable(results[split:], func(i, j int) bool {
		return betterResult(results[i], results[j])
	})
}
