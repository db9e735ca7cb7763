package search

import (
	"regexp"
	"strings"
)

// Stop words to filter out when tokenizing queries and titles
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// tokenSet returns the filtered tokens of text as a set.
func tokenSet(text string) map[string]bool {
	tokens := tokenizeAndFilter(text)
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWordSet := tokenSet(document)

	// Check if all query words exist in document
	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}

// titleOverlap computes the share of the candidate's title tokens that also
// appear in an already-selected title: intersection size divided by the
// candidate's own token-set size. The ratio is deliberately asymmetric; a
// long candidate title sharing one token with a short selected title barely
// overlaps it, while a short candidate fully contained in a longer selected
// title overlaps completely. Empty sets overlap with nothing.
func titleOverlap(candidate, selected map[string]bool) float64 {
	if len(candidate) == 0 || len(selected) == 0 {
		return 0
	}
	shared := 0
	for token := range candidate {
		if selected[token] {
			shared++
		}
	}
	return float64(shared) / float64(len(candidate))
}

// fragmentSeparatorRe matches the connectives a comparative query uses
// between the things being compared.
var fragmentSeparatorRe = regexp.MustCompile(`(?i)\s+(?:vs\.?|versus|compared\s+(?:to|with)|and|or)\s+`)

// comparativeLeadRe strips the question scaffolding in front of the first
// compared thing ("compare X and Y", "what is the difference between X and Y").
var comparativeLeadRe = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:can\s+you\s+)?(?:what\s+(?:is|are)\s+the\s+)?(?:difference(?:s)?\s+between\s+|compare\s+|comparison\s+(?:of|between)\s+|which\s+is\s+better[,:\s]*)`)

// splitComparativeFragments segments a comparative query into the things
// being compared. Fragments that carry no content words are dropped, so a
// purely pronominal comparison ("how do they compare") yields fewer than
// two fragments.
func splitComparativeFragments(query string) []string {
	stripped := comparativeLeadRe.ReplaceAllString(query, "")
	parts := fragmentSeparatorRe.Split(stripped, -1)

	fragments := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, " \t.,!?;:")
		if part == "" {
			continue
		}
		if len(tokenizeAndFilter(part)) == 0 {
			continue
		}
		fragments = append(fragments, part)
	}
	return fragments
}
