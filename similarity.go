package moodtuner

import "strings"

// ──────────────────────────────────────────────
// Text Similarity — swappable metric behind a narrow interface
// ──────────────────────────────────────────────

// TextSimilarity scores lexical similarity between two texts in [0,1].
// 1.0 means identical vocabulary, 0.0 means fully disjoint.
type TextSimilarity interface {
	Similarity(a, b string) float64
}

// JaccardSimilarity compares lowercase token sets (word overlap / union).
type JaccardSimilarity struct{}

func (JaccardSimilarity) Similarity(a, b string) float64 {
	sa := tokenSet(a)
	sb := tokenSet(b)
	return jaccard(sa, sb)
}

// BigramSimilarity compares adjacent word-pair sets. More sensitive to
// phrasing order than plain token overlap.
type BigramSimilarity struct{}

func (BigramSimilarity) Similarity(a, b string) float64 {
	sa := bigramSet(a)
	sb := bigramSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		// Degenerate inputs (fewer than two words): fall back to tokens.
		return jaccard(tokenSet(a), tokenSet(b))
	}
	return jaccard(sa, sb)
}

func jaccard(sa, sb map[string]bool) float64 {
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}
	if len(sa) == 0 || len(sb) == 0 {
		return 0.0
	}
	overlap := 0
	for t := range sa {
		if sb[t] {
			overlap++
		}
	}
	union := len(sa) + len(sb) - overlap
	return float64(overlap) / float64(union)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[strings.Trim(w, ".,!?;:\"'()")] = true
	}
	delete(set, "")
	return set
}

func bigramSet(text string) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool)
	for i := 0; i+1 < len(words); i++ {
		set[words[i]+" "+words[i+1]] = true
	}
	return set
}

// Compile-time interface checks.
var (
	_ TextSimilarity = JaccardSimilarity{}
	_ TextSimilarity = BigramSimilarity{}
)
