// Package classifier assigns each conversation exactly one taxonomy
// category. Classification is pure and total: the same inputs always produce
// the same category, and unclassifiable input resolves to the catch-all.
package classifier

import (
	"strings"

	"callinsights/internal/taxonomy"
)

// Similarity scores how alike two strings are, in [0, 1]. Exact match after
// lowercasing and trimming scores 1.0, substring containment in either
// direction scores taxonomy.ContainmentScore, anything else scores the
// Jaccard overlap of the whitespace-split word sets.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1.0
	}
	if s1 != "" && s2 != "" && (strings.Contains(s1, s2) || strings.Contains(s2, s1)) {
		return taxonomy.ContainmentScore
	}

	words1 := tokenSet(s1)
	words2 := tokenSet(s2)
	union := len(words2)
	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// Classify maps a conversation's summary title, duration, and message count
// to a category name.
//
// The duration pre-check has absolute priority: very short, low-message
// calls are Hangups no matter what the title says. After that the title is
// scored against the domain categories (revenue first), and the fallback
// categories' keyword lists are consulted only when no domain category
// cleared the similarity threshold. A best score below the threshold
// resolves to the catch-all.
func Classify(title string, durationSecs, messageCount int) string {
	if durationSecs < taxonomy.HangupMaxDurationSecs && messageCount < taxonomy.HangupMaxMessages {
		return taxonomy.Hangups
	}

	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return taxonomy.CatchAll
	}

	best := taxonomy.CatchAll
	bestScore := 0.0
	for _, cat := range taxonomy.Domain() {
		if score := scoreCategory(normalized, cat); score > bestScore {
			bestScore = score
			best = cat.Name
		}
	}

	if bestScore < taxonomy.SimilarityThreshold {
		for _, cat := range taxonomy.Fallback() {
			if score := scoreCategory(normalized, cat); score > bestScore {
				bestScore = score
				best = cat.Name
			}
		}
	}

	if bestScore < taxonomy.SimilarityThreshold {
		return taxonomy.CatchAll
	}
	return best
}

// scoreCategory returns the best keyword score for a normalized title
// against one category. Keywords only count when the title contains them;
// the category's own display name is held to the higher NameMatchBar.
func scoreCategory(normalized string, cat taxonomy.Category) float64 {
	best := 0.0
	for _, kw := range cat.Keywords {
		if strings.Contains(normalized, kw) {
			if score := Similarity(normalized, kw); score > best {
				best = score
			}
		}
	}
	if score := Similarity(normalized, strings.ToLower(cat.Name)); score > taxonomy.NameMatchBar && score > best {
		best = score
	}
	return best
}
