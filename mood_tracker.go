package moodtuner

import (
	"strings"
	"unicode"
)

// ──────────────────────────────────────────────
// Mood Tracker — rule-based affect model with smoothing
// ──────────────────────────────────────────────

// MoodLabel is a discrete categorical tag summarizing user affect.
type MoodLabel string

const (
	MoodNeutral       MoodLabel = "neutral"
	MoodConcerned     MoodLabel = "concerned"
	MoodFrustrated    MoodLabel = "frustrated"
	MoodEngaged       MoodLabel = "engaged"
	MoodExcited       MoodLabel = "excited"
	MoodDisappointed  MoodLabel = "disappointed"
	MoodBored         MoodLabel = "bored"
	MoodContemplative MoodLabel = "contemplative"
)

// MoodState is the affect model output for one turn. Value type,
// recomputed each turn, never mutated in place.
type MoodState struct {
	Label      MoodLabel `json:"label"`
	Energy     float64   `json:"energy"`     // 0.0-1.0
	Engagement float64   `json:"engagement"` // 0.0-1.0
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

// moodSignals holds the lexical/structural features extracted from one message.
type moodSignals struct {
	wordCount      int
	exclamations   int
	hasQuestion    bool
	uppercaseRatio float64
	negations      int
	complaintRepeat bool // "again", "many times" — repeated-complaint marker
	disengageThreat bool // negative affect + talk of leaving
	engagementEst  float64

	upsetScore         float64
	sadScore           float64
	excitedScore       float64
	boredScore         float64
	contemplativeScore float64
}

// moodRule maps raw signals to a raw mood. Rules are evaluated in
// declaration order; the first match wins.
type moodRule struct {
	match      func(sig moodSignals) bool
	label      MoodLabel
	energy     float64
	engagement float64
	trigger    bool // keyword-triggered labels survive smoothing unchanged
}

// MoodTracker derives a MoodState from the latest user message plus
// history. Analysis is a pure function of its inputs.
type MoodTracker struct {
	cfg      MoodConfig
	patterns map[string][]weightedKeyword
	rules    []moodRule
}

// NewMoodTracker creates a tracker with built-in keyword patterns.
func NewMoodTracker(cfg MoodConfig) *MoodTracker {
	t := &MoodTracker{
		cfg:      cfg,
		patterns: defaultMoodPatterns(),
	}
	t.rules = t.buildRules()
	return t
}

func defaultMoodPatterns() map[string][]weightedKeyword {
	return map[string][]weightedKeyword{
		"upset": {
			{keyword: "furious", weight: 0.6}, {keyword: "upset", weight: 0.5},
			{keyword: "angry", weight: 0.5}, {keyword: "frustrated", weight: 0.5},
			{keyword: "pissed", weight: 0.5}, {keyword: "wtf", weight: 0.5},
			{keyword: "mad", weight: 0.4}, {keyword: "annoyed", weight: 0.4},
			{keyword: "terrible", weight: 0.4}, {keyword: "useless", weight: 0.4},
		},
		"sad": {
			{keyword: "devastated", weight: 0.6}, {keyword: "heartbroken", weight: 0.6},
			{keyword: "disappointed", weight: 0.5}, {keyword: "sad", weight: 0.5},
			{keyword: "depressed", weight: 0.5}, {keyword: "sigh", weight: 0.4},
			{keyword: "forget it", weight: 0.4},
		},
		"excited": {
			{keyword: "incredible", weight: 0.6}, {keyword: "amazing", weight: 0.5},
			{keyword: "awesome", weight: 0.5}, {keyword: "fantastic", weight: 0.5},
			{keyword: "excited", weight: 0.5}, {keyword: "thrilled", weight: 0.5},
			{keyword: "love it", weight: 0.4},
			// low weight — needs company to trigger (anti-false-positive)
			{keyword: "great", weight: 0.3}, {keyword: "nice", weight: 0.3},
		},
		"bored": {
			{keyword: "boring", weight: 0.5}, {keyword: "bored", weight: 0.5},
			{keyword: "whatever", weight: 0.4}, {keyword: "meh", weight: 0.4},
			{keyword: "uninteresting", weight: 0.4}, {keyword: "tired", weight: 0.3},
		},
		"contemplative": {
			{keyword: "ponder", weight: 0.4}, {keyword: "contemplate", weight: 0.4},
			{keyword: "reflect", weight: 0.4}, {keyword: "wonder", weight: 0.3},
			{keyword: "thinking about", weight: 0.3}, {keyword: "consider", weight: 0.3},
		},
	}
}

var complaintMarkers = []string{
	"again", "many times", "every time", "once more", "as usual", "keep doing",
}

var negationMarkers = []string{
	"not ", "don't", "dont", "won't", "wont", "can't", "cant", "never", "no ",
}

var leaveMarkers = []string{
	"come back", "leave", "give up", "i'm done", "i quit", "goodbye", "done with",
}

// extractSignals computes the feature set for one message.
func (t *MoodTracker) extractSignals(message string) moodSignals {
	lower := strings.ToLower(message)
	words := strings.Fields(message)

	sig := moodSignals{
		wordCount:    len(words),
		exclamations: strings.Count(message, "!"),
		hasQuestion:  strings.Contains(message, "?"),
	}

	var upper, letters int
	for _, r := range message {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 {
		sig.uppercaseRatio = float64(upper) / float64(letters)
	}

	for _, m := range negationMarkers {
		if strings.Contains(lower, m) {
			sig.negations++
		}
	}
	for _, m := range complaintMarkers {
		if strings.Contains(lower, m) {
			sig.complaintRepeat = true
			break
		}
	}

	// Keyword scoring per family
	score := func(family string) float64 {
		var s float64
		for _, kw := range t.patterns[family] {
			if strings.Contains(lower, kw.keyword) {
				s += kw.weight
			}
		}
		return s
	}
	sig.upsetScore = score("upset")
	sig.sadScore = score("sad")
	sig.excitedScore = score("excited")
	sig.boredScore = score("bored")
	sig.contemplativeScore = score("contemplative")

	// Disengagement threat: negative affect plus talk of leaving
	if sig.upsetScore+sig.sadScore >= 0.3 || sig.negations > 0 {
		for _, m := range leaveMarkers {
			if strings.Contains(lower, m) {
				sig.disengageThreat = true
				break
			}
		}
	}

	sig.engagementEst = estimateEngagement(sig, lower)
	return sig
}

// estimateEngagement scores how invested the message is, baseline 0.5.
func estimateEngagement(sig moodSignals, lower string) float64 {
	est := 0.5
	switch {
	case sig.wordCount > 15:
		est += 0.25
	case sig.wordCount > 8:
		est += 0.15
	case sig.wordCount < 2:
		est -= 0.4
	case sig.wordCount < 4:
		est -= 0.2
	}
	if sig.hasQuestion {
		est += 0.2
	}
	if sig.exclamations > 0 {
		est += 0.15
	}
	if sig.exclamations > 2 {
		est += 0.1
	}
	if sig.uppercaseRatio > 0.3 {
		est += 0.15
	}
	if sig.upsetScore+sig.sadScore+sig.excitedScore > 0 {
		est += 0.1
	}
	for _, m := range []string{"i feel", "i think", "personally", "my "} {
		if strings.Contains(lower, m) {
			est += 0.05
			break
		}
	}
	return clamp01(est)
}

// buildRules returns the priority-ordered raw mood rule table.
func (t *MoodTracker) buildRules() []moodRule {
	return []moodRule{
		{
			match: func(s moodSignals) bool {
				return s.upsetScore >= 0.4 && (s.complaintRepeat || s.disengageThreat)
			},
			label: MoodFrustrated, energy: 0.85, engagement: 0.8, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.upsetScore >= 0.4 },
			label: MoodConcerned, energy: 0.75, engagement: 0.75, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.sadScore >= 0.4 },
			label: MoodDisappointed, energy: 0.35, engagement: 0.55, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.excitedScore >= 0.4 },
			label: MoodExcited, energy: 0.85, engagement: 0.85, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.boredScore >= 0.4 },
			label: MoodBored, energy: 0.3, engagement: 0.25, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.contemplativeScore >= 0.3 },
			label: MoodContemplative, energy: 0.4, engagement: 0.65, trigger: true,
		},
		{
			match: func(s moodSignals) bool { return s.engagementEst >= 0.7 },
			label: MoodEngaged, energy: 0.65, engagement: 0.75,
		},
		{
			match: func(s moodSignals) bool { return true },
			label: MoodNeutral, energy: 0.5, engagement: 0.5,
		},
	}
}

// Analyze extracts signals from the message, applies the rule table and
// blends the raw state with the previous turn's mood. Always returns a
// valid MoodState; no error conditions.
func (t *MoodTracker) Analyze(userMessage string, history TurnHistory) MoodState {
	sig := t.extractSignals(userMessage)

	var raw MoodState
	var triggered bool
	for _, rule := range t.rules {
		if rule.match(sig) {
			raw = MoodState{Label: rule.label, Energy: rule.energy, Engagement: rule.engagement}
			triggered = rule.trigger
			break
		}
	}

	// Structural intensity adjustments
	raw.Energy += float64(min(sig.exclamations, 2)) * 0.05
	if sig.uppercaseRatio > 0.3 {
		raw.Energy += 0.1
	}
	if raw.Label == MoodNeutral {
		raw.Engagement = sig.engagementEst
	}
	raw.Energy = clamp01(raw.Energy)
	raw.Engagement = clamp01(raw.Engagement)

	prior, ok := history.LastMood()
	if !ok {
		return raw
	}

	// Bounded exponential smoothing against the prior state
	w := t.cfg.RawWeight
	blended := MoodState{
		Energy:     clamp01(w*raw.Energy + (1-w)*prior.Energy),
		Engagement: clamp01(w*raw.Engagement + (1-w)*prior.Engagement),
	}
	if triggered {
		blended.Label = raw.Label
	} else {
		blended.Label = labelFromLevels(blended.Engagement, blended.Energy)
	}
	return blended
}

// labelFromLevels maps blended numeric levels back to a label when no
// keyword trigger fired. Thresholds follow the engagement/energy grid.
func labelFromLevels(engagement, energy float64) MoodLabel {
	switch {
	case engagement > 0.75 && energy > 0.7:
		return MoodExcited
	case engagement > 0.65:
		return MoodEngaged
	case engagement > 0.55 && energy < 0.45:
		return MoodContemplative
	case engagement < 0.3:
		return MoodBored
	default:
		return MoodNeutral
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
