package moodtuner

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func newTransformer() *ResponseTransformer {
	return NewResponseTransformer(DefaultConfig().Style, nil)
}

func historyWithReplies(replies ...string) *TurnStore {
	s := NewTurnStore()
	for i, r := range replies {
		s.Append(TurnRecord{
			TurnIndex:      i + 1,
			UserMessage:    "msg",
			RawReply:       "raw",
			ProcessedReply: r,
			Mood:           MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5},
			Initiative:     InitiativeDecision{Taken: false, Kind: InitiativeNone},
			Timestamp:      time.Now(),
		})
	}
	return s
}

func TestTransform_EmptyReply(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5}
	dec := InitiativeDecision{Taken: false, Kind: InitiativeNone}

	for _, raw := range []string{"", "   ", "\n\t"} {
		_, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
		if !errors.Is(err, ErrEmptyReply) {
			t.Fatalf("raw %q: expected ErrEmptyReply, got %v", raw, err)
		}
	}
}

func TestTransform_BodyPreserved(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodFrustrated, Energy: 0.85, Engagement: 0.8}
	dec := InitiativeDecision{Taken: true, Kind: InitiativeReassure}
	raw := "The deployment failed because the token expired"

	out, score, err := tr.Transform(raw, mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, raw) {
		t.Fatalf("raw content must be carried through, got %q", out)
	}
	if out == raw {
		t.Fatal("frustrated mood with initiative should add fragments")
	}
	if score != 1.0 {
		t.Fatalf("empty window should score full variety, got %.3f", score)
	}
}

func TestTransform_InitiativeFragmentPresent(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodConcerned, Energy: 0.75, Engagement: 0.75}

	withInit, _, err := tr.Transform("Here is the answer.", mood,
		InitiativeDecision{Taken: true, Kind: InitiativeClarify}, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	without, _, err := tr.Transform("Here is the answer.", mood,
		InitiativeDecision{Taken: false, Kind: InitiativeNone}, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	if len(withInit) <= len(without) {
		t.Fatal("clarify decision should add an initiative fragment")
	}
}

func TestTransform_ForbiddenPhrasesStripped(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5}
	dec := InitiativeDecision{Taken: false, Kind: InitiativeNone}
	raw := "As an AI, I cannot promise that. as an ai I also repeat myself. I hope this helps."

	out, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	lower := strings.ToLower(out)
	if strings.Contains(lower, "as an ai") {
		t.Fatalf("boilerplate not stripped: %q", out)
	}
	if strings.Contains(lower, "i hope this helps") {
		t.Fatalf("boilerplate not stripped: %q", out)
	}
}

func TestTransform_ForbiddenPhrasesStrippedAfterMultibyteRunes(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5}
	dec := InitiativeDecision{Taken: false, Kind: InitiativeNone}

	// Runes whose case pair changes UTF-8 width sit before the phrase.
	for _, raw := range []string{
		"İİİİ noted for the record. As an AI, noted again.",
		"Ⱥ strange reply follows here. as an ai I repeat boilerplate.",
	} {
		out, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
		if err != nil {
			t.Fatalf("raw %q: %v", raw, err)
		}
		if !utf8.ValidString(out) {
			t.Fatalf("raw %q: output is not valid UTF-8: %q", raw, out)
		}
		if strings.Contains(strings.ToLower(out), "as an ai") {
			t.Fatalf("raw %q: boilerplate not stripped: %q", raw, out)
		}
		if !strings.Contains(out, "noted") && !strings.Contains(out, "strange reply") {
			t.Fatalf("raw %q: body content lost: %q", raw, out)
		}
	}
}

func TestRemoveFold(t *testing.T) {
	cases := []struct {
		name, s, phrase, want string
	}{
		{"plain", "well, I hope this helps today", "I hope this helps", "well,  today"},
		{"case folded", "AS AN AI I cannot", "As an AI", " I cannot"},
		{"repeated", "As an AI, as an ai, done", "As an AI", ", , done"},
		{"no match", "nothing to strip here", "As an AI", "nothing to strip here"},
		{"empty phrase", "unchanged", "", "unchanged"},
		{"multibyte prefix", "İİ As an AI tail", "As an AI", "İİ  tail"},
		{"phrase longer than text", "hi", "I hope this helps", "hi"},
	}
	for _, tc := range cases {
		if got := removeFold(tc.s, tc.phrase); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTransform_VarietyPicksAlternateFragments(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodFrustrated, Energy: 0.85, Engagement: 0.8}
	dec := InitiativeDecision{Taken: true, Kind: InitiativeReassure}
	raw := "Let me check the logs for that error."

	first, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}

	// The previous composition sits in the variety window now.
	second, _, err := tr.Transform(raw, mood, dec, historyWithReplies(first))
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("identical composition should be rejected by the variety window")
	}
	if !strings.Contains(second, raw) {
		t.Fatalf("alternate composition must still carry the raw content, got %q", second)
	}
}

func TestTransform_NeverDroppedWhenAllCandidatesSimilar(t *testing.T) {
	cfg := DefaultConfig().Style
	cfg.VarietyCutoff = 0.99
	tr := NewResponseTransformer(cfg, nil)
	mood := MoodState{Label: MoodConcerned, Energy: 0.75, Engagement: 0.75}
	dec := InitiativeDecision{Taken: true, Kind: InitiativeReassure}
	raw := "The answer has not changed."

	first, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}

	out, score, err := tr.Transform(raw, mood, dec, historyWithReplies(first))
	if err != nil {
		t.Fatal(err)
	}
	if out == "" {
		t.Fatal("reply must never be dropped for lack of variety")
	}
	if score >= cfg.VarietyCutoff {
		t.Fatalf("expected best-effort score below cutoff, got %.3f", score)
	}
}

func TestTransform_DistinctRawsStayDistinct(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodEngaged, Energy: 0.65, Engagement: 0.75}
	dec := InitiativeDecision{Taken: false, Kind: InitiativeNone}

	a, _, err := tr.Transform("The cache is warm.", mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := tr.Transform("The index needs rebuilding.", mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("distinct raw replies must not collapse to the same output")
	}
}

func TestTransform_WordCapEnforced(t *testing.T) {
	cfg := DefaultConfig().Style
	tr := NewResponseTransformer(cfg, nil)
	mood := MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5}
	dec := InitiativeDecision{Taken: false, Kind: InitiativeNone}
	raw := strings.TrimSpace(strings.Repeat("word after word keeps coming and never stops flowing onward ", 30))

	out, _, err := tr.Transform(raw, mood, dec, NewTurnStore())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Fields(out)); got > cfg.MaxWords {
		t.Fatalf("word cap exceeded: %d > %d", got, cfg.MaxWords)
	}
	if !strings.HasSuffix(out, "...") && !strings.HasSuffix(out, ".") {
		t.Fatalf("truncated reply should end cleanly, got %q", out[len(out)-20:])
	}
}

func TestTransform_Deterministic(t *testing.T) {
	tr := newTransformer()
	mood := MoodState{Label: MoodDisappointed, Energy: 0.35, Engagement: 0.55}
	dec := InitiativeDecision{Taken: true, Kind: InitiativeChallenge}
	history := historyWithReplies("an earlier reply about deployment sanity checks")

	a, sa, err := tr.Transform("Same input.", mood, dec, history)
	if err != nil {
		t.Fatal(err)
	}
	b, sb, err := tr.Transform("Same input.", mood, dec, history)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || sa != sb {
		t.Fatal("transformation must be deterministic for identical inputs")
	}
}

func TestVarietyScore(t *testing.T) {
	tr := newTransformer()

	if got := tr.VarietyScore("anything at all", nil); got != 1.0 {
		t.Fatalf("empty window must score 1.0, got %.3f", got)
	}
	if got := tr.VarietyScore("the same text", []string{"the same text"}); got != 0.0 {
		t.Fatalf("identical prior must score 0.0, got %.3f", got)
	}
	got := tr.VarietyScore("completely different words", []string{"the same text"})
	if got != 1.0 {
		t.Fatalf("disjoint prior must score 1.0, got %.3f", got)
	}
}
