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

// fuseScore blends a candidate's semantic similarity with its structured
// eligibility signal. When the eligibility signal is absent the weights
// renormalize to pure semantic, so an unknown signal never drags a candidate
// down the way a zero would.
func fuseScore(c *core.Candidate, semanticWeight, eligibilityWeight float64) float64 {
	if !c.EligibilityKnown {
		return clamp01(c.Semantic)
	}
	return clamp01(semanticWeight*c.Semantic + eligibilityWeight*c.Eligibility)
}

// fuseCandidates scores a batch and returns it ordered by fused score
// descending, ties broken by original semantic rank.
func fuseCandidates(candidates []*core.Candidate, cfg *Config) []*core.RankedResult {
	results := make([]*core.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		fused := fuseScore(c, cfg.SemanticWeight, cfg.EligibilityWeight)
		results = append(results, &core.RankedResult{
			Candidate: *c,
			Fused:     fused,
			Adjusted:  fused,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Fused != results[j].Fused {
			return results[i].Fused > results[j].Fused
		}
		return results[i].SemanticRank < results[j].SemanticRank
	})

	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
