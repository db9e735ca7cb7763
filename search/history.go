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
	"regexp"

	"github.com/ailsahq/grantseek/core"
)

// grantRefRe matches source:number grant ids embedded in assistant prose.
var grantRefRe = regexp.MustCompile(`\b([a-z][a-z0-9_]*:[0-9]+)\b`)

// ExtractGrantRefs pulls grant references out of conversation history,
// newest first. Assistant turns contribute their structured GrantIds and any
// source:number patterns found in the text; user turns are ignored. The
// result is deduplicated and bounded to limit entries. Pure: the history is
// not modified.
func ExtractGrantRefs(history []core.Turn, limit int) []core.GrantID {
	if limit <= 0 {
		return nil
	}

	refs := make([]core.GrantID, 0, limit)
	seen := make(map[core.GrantID]bool)

	add := func(id core.GrantID) bool {
		if !id.Valid() || seen[id] {
			return len(refs) < limit
		}
		seen[id] = true
		refs = append(refs, id)
		return len(refs) < limit
	}

	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != core.RoleAssistant {
			continue
		}

		for _, id := range turn.GrantIds {
			if !add(id) {
				return refs
			}
		}

		for _, match := range grantRefRe.FindAllString(turn.Content, -1) {
			if !add(core.GrantID(match)) {
				return refs
			}
		}
	}

	return refs
}
