package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeAndFilter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "strips stop words and punctuation",
			text: "What is the Biomedical Catalyst, and who runs it?",
			want: []string{"what", "biomedical", "catalyst", "who", "runs"},
		},
		{
			name: "all stop words yields empty",
			text: "the a an of and",
			want: []string{},
		},
		{
			name: "empty string",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenizeAndFilter(tt.text))
		})
	}
}

func TestTitleOverlap(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		selected  string
		want      float64
	}{
		{"identical", "Smart Grants Round 12", "Smart Grants Round 12", 1.0},
		{"disjoint", "Smart Grants Round 12", "Biomedical Catalyst", 0.0},
		{"near-duplicate round", "Smart Grants Round 13", "Smart Grants Round 12", 0.75},
		{"long candidate against short selected", "Quantum Sensing Marine Robotics Accelerator", "Quantum", 0.2},
		{"short candidate inside long selected", "Quantum", "Quantum Sensing Marine Robotics Accelerator", 1.0},
		{"empty side", "", "Biomedical Catalyst", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleOverlap(tokenSet(tt.candidate), tokenSet(tt.selected))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestContainsAllQueryWords(t *testing.T) {
	doc := "The Smart Grants programme funds game-changing innovation across the UK."

	assert.True(t, containsAllQueryWords(doc, "smart grants innovation"))
	assert.False(t, containsAllQueryWords(doc, "smart grants robotics"))
	assert.False(t, containsAllQueryWords(doc, "the and of"))
}

func TestSplitComparativeFragments(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "vs separator",
			query: "Smart Grants vs Biomedical Catalyst",
			want:  []string{"Smart Grants", "Biomedical Catalyst"},
		},
		{
			name:  "versus separator",
			query: "Smart Grants versus Biomedical Catalyst",
			want:  []string{"Smart Grants", "Biomedical Catalyst"},
		},
		{
			name:  "difference-between scaffolding stripped",
			query: "what is the difference between NIHR i4i and Innovate UK Smart",
			want:  []string{"NIHR i4i", "Innovate UK Smart"},
		},
		{
			name:  "compare lead stripped",
			query: "compare the Catapult fund with the Catalyst fund",
			// "with" alone is not a separator, "compared with" is
			want: []string{"the Catapult fund with the Catalyst fund"},
		},
		{
			name:  "compared to",
			query: "Catapult fund compared to Catalyst fund",
			want:  []string{"Catapult fund", "Catalyst fund"},
		},
		{
			name:  "purely pronominal yields one fragment",
			query: "how do they compare",
			want:  []string{"how do they compare"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitComparativeFragments(tt.query))
		})
	}
}
