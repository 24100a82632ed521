package moodtuner

import (
	"strings"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// Response Transformer — mood-consistent, variety-enforced composition
// ──────────────────────────────────────────────

// ResponseTransformer rewrites the raw provider reply to match the
// current mood and initiative decision. The raw content is composed
// with phrase fragments, never discarded.
type ResponseTransformer struct {
	cfg StyleConfig
	sim TextSimilarity
}

// NewResponseTransformer creates a transformer. A nil similarity metric
// defaults to Jaccard token overlap.
func NewResponseTransformer(cfg StyleConfig, sim TextSimilarity) *ResponseTransformer {
	if sim == nil {
		sim = JaccardSimilarity{}
	}
	return &ResponseTransformer{cfg: cfg, sim: sim}
}

// Transform composes the processed reply and returns it with its
// variety score against the recent reply window.
//
// Fragment sets are tried in deterministic rank order; the first
// composition whose variety clears the configured cutoff wins. If none
// clears it, the highest-scoring candidate is used — the reply is never
// dropped for lack of variety.
func (tr *ResponseTransformer) Transform(
	rawReply string,
	mood MoodState,
	decision InitiativeDecision,
	history TurnHistory,
) (string, float64, error) {
	body := strings.TrimSpace(rawReply)
	if body == "" {
		return "", 0, ErrEmptyReply
	}

	window := history.RecentReplies(tr.cfg.VarietyWindow)

	var bestText string
	bestScore := -1.0
	ranks := maxFragmentRank(mood.Label, decision.Kind)
	for rank := 0; rank < ranks; rank++ {
		set := fragmentsFor(mood.Label, decision.Kind, rank)
		candidate := tr.postProcess(compose(set, body))
		score := tr.VarietyScore(candidate, window)
		if score >= tr.cfg.VarietyCutoff {
			return candidate, score, nil
		}
		if score > bestScore {
			bestScore = score
			bestText = candidate
		}
	}
	return bestText, bestScore, nil
}

// VarietyScore measures lexical divergence of text from the window of
// recent replies: 1 minus the highest similarity found. Empty window
// scores 1.0 (fully novel).
func (tr *ResponseTransformer) VarietyScore(text string, window []string) float64 {
	maxSim := 0.0
	for _, prior := range window {
		if s := tr.sim.Similarity(text, prior); s > maxSim {
			maxSim = s
		}
	}
	return clamp01(1.0 - maxSim)
}

// compose joins the fragment set around the raw body. Empty fragments
// are skipped; the body is always present.
func compose(set fragmentSet, body string) string {
	parts := make([]string, 0, 5)
	if set.Opener != "" {
		parts = append(parts, set.Opener)
	}
	if set.Empathy != "" {
		parts = append(parts, set.Empathy)
	}
	parts = append(parts, ensureTerminated(body))
	if set.Initiative != "" {
		parts = append(parts, set.Initiative)
	}
	if set.Closer != "" {
		parts = append(parts, set.Closer)
	}
	return strings.Join(parts, " ")
}

func ensureTerminated(s string) string {
	switch {
	case strings.HasSuffix(s, "."), strings.HasSuffix(s, "!"), strings.HasSuffix(s, "?"):
		return s
	default:
		return s + "."
	}
}

// postProcess strips boilerplate phrases, normalizes whitespace and
// enforces the word cap with a sentence-boundary cut.
func (tr *ResponseTransformer) postProcess(text string) string {
	result := text
	for _, phrase := range tr.cfg.ForbiddenPhrases {
		result = removeFold(result, phrase)
	}
	result = collapseWhitespace(result)
	if tr.cfg.MaxWords > 0 {
		result = truncateWords(result, tr.cfg.MaxWords, tr.cfg.MinPreserveWords)
	}
	return strings.TrimSpace(result)
}

// removeFold deletes every case-insensitive occurrence of phrase from s.
// Matching is done rune-window by rune-window on the original string, so
// runes whose case pair changes UTF-8 width cannot shift the match.
func removeFold(s, phrase string) string {
	if phrase == "" {
		return s
	}
	phraseRunes := utf8.RuneCountInString(phrase)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		end, ok := advanceRunes(s, i, phraseRunes)
		if ok && strings.EqualFold(s[i:end], phrase) {
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

// advanceRunes returns the byte offset just past n runes starting at i,
// or false when fewer than n runes remain.
func advanceRunes(s string, i, n int) (int, bool) {
	end := i
	for ; n > 0; n-- {
		if end >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return end, true
}

func collapseWhitespace(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// truncateWords cuts text to maxWords, preferring the nearest sentence
// boundary past minPreserve words. Deterministic: no random endings.
func truncateWords(text string, maxWords, minPreserve int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords || len(words) <= minPreserve {
		return text
	}
	kept := strings.Join(words[:maxWords], " ")

	bestEnd := -1
	for _, sep := range []string{".", "!", "?"} {
		if idx := strings.LastIndex(kept, sep); idx > bestEnd {
			bestEnd = idx
		}
	}
	// Only honor the boundary if it keeps most of the capped text.
	if bestEnd > len(kept)*3/5 {
		return strings.TrimSpace(kept[:bestEnd+1])
	}
	return kept + "..."
}
