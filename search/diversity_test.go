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
	"testing"

	"github.com/ailsahq/grantseek/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranked(id core.GrantID, source, title string, fused float64, rank int) *core.RankedResult {
	r := &core.RankedResult{Fused: fused, Adjusted: fused}
	r.GrantId = id
	r.Source = source
	r.Title = title
	r.SemanticRank = rank
	return r
}

func TestSelectDiverse(t *testing.T) {
	t.Run("penalizes repeated source and similar title", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxResults = 2

		pool := []*core.RankedResult{
			ranked("innovate_uk:77", "innovate_uk", "Smart Grants Round 12", 0.90, 0),
			ranked("innovate_uk:78", "innovate_uk", "Smart Grants Round 13", 0.88, 1),
			ranked("nihr:2044", "nihr", "Biomedical Catalyst", 0.85, 2),
		}

		selected := selectDiverse(pool, cfg)

		// Round 13 loses 0.5*0.15 for the repeated source and 0.3*0.15 for
		// the near-duplicate title, dropping it below the nihr candidate.
		assert.Len(t, selected, 2)
		assert.Equal(t, core.GrantID("innovate_uk:77"), selected[0].GrantId)
		assert.Equal(t, core.GrantID("nihr:2044"), selected[1].GrantId)
	})

	t.Run("penalty is reflected in adjusted score", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxResults = 3

		pool := []*core.RankedResult{
			ranked("innovate_uk:77", "innovate_uk", "Smart Grants Round 12", 0.90, 0),
			ranked("innovate_uk:78", "innovate_uk", "Smart Grants Round 13", 0.88, 1),
			ranked("nihr:2044", "nihr", "Biomedical Catalyst", 0.85, 2),
			ranked("ukri:5", "ukri", "Future Leaders Fellowships", 0.40, 3),
		}

		selected := selectDiverse(pool, cfg)

		assert.Len(t, selected, 3)
		for _, r := range selected {
			if r.GrantId == "innovate_uk:78" {
				assert.Less(t, r.Adjusted, r.Fused)
			}
		}
	})

	t.Run("long title sharing one token is not a near-duplicate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxResults = 2

		pool := []*core.RankedResult{
			ranked("a:1", "a", "Quantum", 0.90, 0),
			ranked("b:2", "b", "Quantum Sensing Marine Robotics Accelerator", 0.85, 1),
			ranked("c:3", "c", "Alpha Beta", 0.84, 2),
		}

		selected := selectDiverse(pool, cfg)

		// Only one of the long title's five tokens repeats the selected
		// title, so it keeps its 0.85 and outranks the 0.84 candidate.
		require.Len(t, selected, 2)
		assert.Equal(t, core.GrantID("a:1"), selected[0].GrantId)
		assert.Equal(t, core.GrantID("b:2"), selected[1].GrantId)
		assert.InDelta(t, 0.85, selected[1].Adjusted, 1e-9)
	})

	t.Run("directly fetched candidates are exempt from penalties", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxResults = 2

		direct := ranked("innovate_uk:78", "innovate_uk", "Smart Grants Round 13", 0.88, 1)
		direct.DirectlyFetched = true

		pool := []*core.RankedResult{
			ranked("innovate_uk:77", "innovate_uk", "Smart Grants Round 12", 0.90, 0),
			direct,
			ranked("nihr:2044", "nihr", "Biomedical Catalyst", 0.85, 2),
		}

		selected := selectDiverse(pool, cfg)

		assert.Equal(t, core.GrantID("innovate_uk:77"), selected[0].GrantId)
		assert.Equal(t, core.GrantID("innovate_uk:78"), selected[1].GrantId)
		assert.Equal(t, direct.Fused, direct.Adjusted)
	})

	t.Run("small pool puts directly fetched first", func(t *testing.T) {
		cfg := DefaultConfig() // MaxResults 5

		direct := ranked("nihr:1023", "nihr", "AI Diagnostics Accelerator", 0.59, 0)
		direct.DirectlyFetched = true

		pool := []*core.RankedResult{
			ranked("innovate_uk:77", "innovate_uk", "Smart Grants Round 12", 0.90, 1),
			direct,
		}

		selected := selectDiverse(pool, cfg)

		assert.Len(t, selected, 2)
		assert.Equal(t, core.GrantID("nihr:1023"), selected[0].GrantId)
		assert.Equal(t, core.GrantID("innovate_uk:77"), selected[1].GrantId)
	})

	t.Run("deterministic tie-break on semantic rank", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxResults = 1

		pool := []*core.RankedResult{
			ranked("b:2", "b", "Beta Fund", 0.8, 1),
			ranked("a:1", "a", "Alpha Fund", 0.8, 0),
			ranked("c:3", "c", "Gamma Fund", 0.7, 2),
		}

		selected := selectDiverse(pool, cfg)

		assert.Len(t, selected, 1)
		assert.Equal(t, core.GrantID("a:1"), selected[0].GrantId)
	})

	t.Run("empty pool", func(t *testing.T) {
		assert.Nil(t, selectDiverse(nil, DefaultConfig()))
	})
}
