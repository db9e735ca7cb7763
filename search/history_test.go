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
)

func TestExtractGrantRefs(t *testing.T) {
	t.Run("structured ids newest first", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleUser, Content: "grants for AI diagnostics"},
			{Role: core.RoleAssistant, Content: "Here are two options.", GrantIds: []core.GrantID{"nihr:1023", "innovate_uk:77"}},
			{Role: core.RoleUser, Content: "anything for robotics?"},
			{Role: core.RoleAssistant, Content: "One match.", GrantIds: []core.GrantID{"ukri:5"}},
		}

		refs := ExtractGrantRefs(history, 10)
		assert.Equal(t, []core.GrantID{"ukri:5", "nihr:1023", "innovate_uk:77"}, refs)
	})

	t.Run("ids embedded in assistant text", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleAssistant, Content: "The closest fit is innovate_uk:77, with nihr:1023 as a fallback."},
		}

		refs := ExtractGrantRefs(history, 10)
		assert.Equal(t, []core.GrantID{"innovate_uk:77", "nihr:1023"}, refs)
	})

	t.Run("user turns are ignored", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleUser, Content: "what about nihr:1023?", GrantIds: []core.GrantID{"nihr:1023"}},
		}

		refs := ExtractGrantRefs(history, 10)
		assert.Empty(t, refs)
	})

	t.Run("duplicates collapse to first mention", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleAssistant, Content: "earlier", GrantIds: []core.GrantID{"nihr:1023"}},
			{Role: core.RoleAssistant, Content: "again nihr:1023 here", GrantIds: []core.GrantID{"nihr:1023", "ukri:5"}},
		}

		refs := ExtractGrantRefs(history, 10)
		assert.Equal(t, []core.GrantID{"nihr:1023", "ukri:5"}, refs)
	})

	t.Run("invalid ids are skipped", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleAssistant, Content: "see also Grant:12", GrantIds: []core.GrantID{"NIHR:12", "nihr:x9", "nihr:1023"}},
		}

		refs := ExtractGrantRefs(history, 10)
		assert.Equal(t, []core.GrantID{"nihr:1023"}, refs)
	})

	t.Run("bounded by limit", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleAssistant, GrantIds: []core.GrantID{"a:1", "b:2", "c:3", "d:4"}},
		}

		refs := ExtractGrantRefs(history, 2)
		assert.Equal(t, []core.GrantID{"a:1", "b:2"}, refs)
	})

	t.Run("non-positive limit yields nil", func(t *testing.T) {
		history := []core.Turn{
			{Role: core.RoleAssistant, GrantIds: []core.GrantID{"a:1"}},
		}

		assert.Nil(t, ExtractGrantRefs(history, 0))
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, ExtractGrantRefs(nil, 10))
	})
}
