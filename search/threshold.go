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

import "github.com/ailsahq/grantseek/core"

// applyThreshold filters fused results against the minimum score threshold,
// relaxing it stepwise toward the floor while fewer than MinAcceptable
// candidates qualify. Each relaxation re-filters the full input, so a lower
// threshold always keeps a superset of what a higher one kept. Returns the
// surviving results, the threshold in effect, and whether relaxation happened.
func applyThreshold(results []*core.RankedResult, cfg *Config) (kept []*core.RankedResult, effective float64, relaxed bool) {
	effective = cfg.MinThreshold

	filter := func(threshold float64) []*core.RankedResult {
		out := make([]*core.RankedResult, 0, len(results))
		for _, r := range results {
			if r.Fused >= threshold {
				out = append(out, r)
			}
		}
		return out
	}

	kept = filter(effective)
	for len(kept) < cfg.MinAcceptable && effective > cfg.ThresholdFloor {
		effective -= cfg.ThresholdStep
		if effective < cfg.ThresholdFloor {
			effective = cfg.ThresholdFloor
		}
		relaxed = true
		kept = filter(effective)
	}

	return kept, effective, relaxed
}
