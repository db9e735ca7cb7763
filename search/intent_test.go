package search

import (
	"testing"

	"github.com/ailsahq/grantseek/core"
	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	discussed := []core.GrantID{"nihr:1023"}

	tests := []struct {
		name      string
		query     string
		discussed []core.GrantID
		want      Intent
	}{
		{
			name:  "plain discovery",
			query: "grants for AI healthcare startups",
			want:  IntentDiscovery,
		},
		{
			name:  "definition of a general term",
			query: "what is a consortium?",
			want:  IntentDefinition,
		},
		{
			name:  "definition via define",
			query: "define technology readiness level",
			want:  IntentDefinition,
		},
		{
			name:  "definition shape but about funding is discovery",
			query: "what is the Smart Grants programme?",
			want:  IntentDiscovery,
		},
		{
			name:  "definition shape mentioning eligibility is discovery",
			query: "what are the eligibility rules here",
			want:  IntentDiscovery,
		},
		{
			name:  "comparative with vs",
			query: "Smart Grants vs Biomedical Catalyst",
			want:  IntentComparative,
		},
		{
			name:  "comparative with difference between",
			query: "what is the difference between NIHR and Innovate UK calls",
			want:  IntentComparative,
		},
		{
			name:      "follow-up with discussed grants",
			query:     "tell me more about the first one",
			discussed: discussed,
			want:      IntentFollowUp,
		},
		{
			name:      "pronoun follow-up",
			query:     "when does it close",
			discussed: discussed,
			want:      IntentFollowUp,
		},
		{
			name:  "follow-up phrasing without context is discovery",
			query: "tell me more about the first one",
			want:  IntentDiscovery,
		},
		{
			name:      "comparative wins over follow-up phrasing",
			query:     "compare them with the NIHR call",
			discussed: discussed,
			want:      IntentComparative,
		},
		{
			name:  "empty-ish query defaults to discovery",
			query: "robotics",
			want:  IntentDiscovery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyIntent(tt.query, tt.discussed)
			assert.Equal(t, tt.want, got, "query %q", tt.query)
		})
	}
}

func TestClassifyIntent_Deterministic(t *testing.T) {
	query := "what about the second one?"
	discussed := []core.GrantID{"innovate_uk:77"}

	first := ClassifyIntent(query, discussed)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClassifyIntent(query, discussed))
	}
}
