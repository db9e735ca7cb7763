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
	"strings"

	"github.com/ailsahq/grantseek/core"
)

// Intent classifies what a query is asking the engine to do.
type Intent int

const (
	// IntentDiscovery is a fresh search for matching grants. The default
	// when no other intent applies.
	IntentDiscovery Intent = iota + 1
	// IntentDefinition asks what a general term means. No retrieval happens.
	IntentDefinition
	// IntentComparative asks to compare two or more named things.
	IntentComparative
	// IntentFollowUp refers back to grants already discussed in the session.
	IntentFollowUp
)

func (i Intent) String() string {
	switch i {
	case IntentDiscovery:
		return "discovery"
	case IntentDefinition:
		return "definition"
	case IntentComparative:
		return "comparative"
	case IntentFollowUp:
		return "follow_up"
	default:
		return "unknown"
	}
}

var (
	definitionRe = regexp.MustCompile(`(?i)^\s*(what\s+(is|are|does)\b|define\b|definition\s+of\b|meaning\s+of\b|explain\s+(the\s+)?(term|concept)\b)`)

	comparativeRe = regexp.MustCompile(`(?i)\b(vs\.?|versus|compare|compared|comparison|difference(s)?\s+between|which\s+is\s+better)\b`)

	followUpRe = regexp.MustCompile(`(?i)\b(it|its|that\s+one|this\s+one|those|these|they|them|the\s+first(\s+one)?|the\s+second(\s+one)?|the\s+last(\s+one)?|either|both)\b|^\s*(what|how)\s+about\b|\b(tell\s+me\s+more|more\s+detail(s)?)\b`)
)

// fundingVocab marks queries that are about funding opportunities themselves
// rather than general terminology. A definition-shaped question that mentions
// funding vocabulary is still a discovery query.
var fundingVocab = []string{
	"grant", "fund", "funding", "scheme", "call", "competition",
	"eligib", "apply", "application", "deadline", "award",
	"bursary", "fellowship", "programme",
}

func mentionsFunding(query string) bool {
	lowered := strings.ToLower(query)
	for _, word := range fundingVocab {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// ClassifyIntent decides what a query is asking for. It is pure and
// deterministic: the same query and discussed-grant context always yield the
// same intent. Ambiguity resolves to discovery.
func ClassifyIntent(query string, discussed []core.GrantID) Intent {
	if definitionRe.MatchString(query) && !mentionsFunding(query) {
		return IntentDefinition
	}

	if comparativeRe.MatchString(query) {
		return IntentComparative
	}

	// Follow-up needs something to follow up on.
	if len(discussed) > 0 && followUpRe.MatchString(query) {
		return IntentFollowUp
	}

	return IntentDiscovery
}
