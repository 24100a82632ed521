package moodtuner

import (
	"strings"
	"testing"
	"time"
)

func newTracker() *MoodTracker {
	return NewMoodTracker(DefaultConfig().Mood)
}

func historyWith(moods ...MoodState) *TurnStore {
	s := NewTurnStore()
	for i, m := range moods {
		s.Append(TurnRecord{
			TurnIndex:      i + 1,
			UserMessage:    "msg",
			RawReply:       "raw",
			ProcessedReply: "processed",
			Mood:           m,
			Initiative:     InitiativeDecision{Taken: false, Kind: InitiativeNone},
			Timestamp:      time.Now(),
		})
	}
	return s
}

func TestAnalyze_UpsetEscalation(t *testing.T) {
	tracker := newTracker()
	msg := "I'm really upset... I have to say it happened many times also with you... I don't know if I will come back"

	mood := tracker.Analyze(msg, NewTurnStore())

	if mood.Label != MoodFrustrated && mood.Label != MoodConcerned {
		t.Fatalf("expected concerned or frustrated, got %s", mood.Label)
	}
	if mood.Energy < 0.7 {
		t.Fatalf("expected energy >= 0.7, got %.2f", mood.Energy)
	}
}

func TestAnalyze_Excited(t *testing.T) {
	tracker := newTracker()
	mood := tracker.Analyze("This is amazing, I'm so excited!!", NewTurnStore())

	if mood.Label != MoodExcited {
		t.Fatalf("expected excited, got %s", mood.Label)
	}
	if mood.Energy < 0.8 {
		t.Fatalf("expected high energy, got %.2f", mood.Energy)
	}
}

func TestAnalyze_Bored(t *testing.T) {
	tracker := newTracker()
	mood := tracker.Analyze("this is so boring, whatever", NewTurnStore())

	if mood.Label != MoodBored {
		t.Fatalf("expected bored, got %s", mood.Label)
	}
	if mood.Engagement > 0.4 {
		t.Fatalf("expected low engagement, got %.2f", mood.Engagement)
	}
}

func TestAnalyze_Disappointed(t *testing.T) {
	tracker := newTracker()
	mood := tracker.Analyze("honestly I'm quite disappointed with the result", NewTurnStore())

	if mood.Label != MoodDisappointed {
		t.Fatalf("expected disappointed, got %s", mood.Label)
	}
}

func TestAnalyze_Neutral(t *testing.T) {
	tracker := newTracker()
	mood := tracker.Analyze("what time is it", NewTurnStore())

	if mood.Label != MoodNeutral {
		t.Fatalf("expected neutral, got %s", mood.Label)
	}
}

func TestAnalyze_BoundsAlwaysHeld(t *testing.T) {
	tracker := newTracker()
	inputs := []string{
		"",
		"!",
		"WHY IS THIS SO TERRIBLE AND USELESS!!!!!!!!",
		strings.Repeat("amazing incredible awesome fantastic ", 100),
		strings.Repeat("a", 10000),
		"????????",
		"I'm furious and devastated and bored and excited all at once!!!",
	}

	for _, in := range inputs {
		mood := tracker.Analyze(in, NewTurnStore())
		if mood.Energy < 0 || mood.Energy > 1 {
			t.Fatalf("energy out of range for %q: %.3f", in[:min(len(in), 30)], mood.Energy)
		}
		if mood.Engagement < 0 || mood.Engagement > 1 {
			t.Fatalf("engagement out of range for %q: %.3f", in[:min(len(in), 30)], mood.Engagement)
		}
		if mood.Label == "" {
			t.Fatal("label must never be empty")
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	tracker := newTracker()
	history := historyWith(MoodState{Label: MoodNeutral, Energy: 0.5, Engagement: 0.5})

	m1 := tracker.Analyze("I wonder how this works?", history)
	m2 := tracker.Analyze("I wonder how this works?", history)

	if m1 != m2 {
		t.Fatalf("analyze is not deterministic: %+v vs %+v", m1, m2)
	}
}

func TestAnalyze_SmoothingObservable(t *testing.T) {
	tracker := newTracker()

	// Raw state for an excited message with no history
	raw := tracker.Analyze("This is amazing, incredible news!!", NewTurnStore())

	// Same message right after a flat neutral turn: blended, not raw
	prior := MoodState{Label: MoodNeutral, Energy: 0.3, Engagement: 0.3}
	blended := tracker.Analyze("This is amazing, incredible news!!", historyWith(prior))

	if blended.Energy >= raw.Energy {
		t.Fatalf("expected smoothing to pull energy toward prior: raw=%.2f blended=%.2f", raw.Energy, blended.Energy)
	}
	if blended.Energy <= prior.Energy {
		t.Fatalf("blended energy should sit between prior and raw, got %.2f", blended.Energy)
	}
	if blended.Engagement >= raw.Engagement || blended.Engagement <= prior.Engagement {
		t.Fatalf("blended engagement should sit between prior and raw, got %.2f", blended.Engagement)
	}
}

func TestAnalyze_TriggerLabelSurvivesSmoothing(t *testing.T) {
	tracker := newTracker()
	prior := MoodState{Label: MoodEngaged, Energy: 0.6, Engagement: 0.7}

	mood := tracker.Analyze("I'm angry, this is terrible", historyWith(prior))

	if mood.Label != MoodConcerned {
		t.Fatalf("keyword trigger label should survive smoothing, got %s", mood.Label)
	}
}

func TestAnalyze_FirstTurnUsesRawState(t *testing.T) {
	tracker := newTracker()

	mood := tracker.Analyze("ok", NewTurnStore())

	// Raw neutral rule with a very short message: engagement well below
	// baseline, proving no prior was blended in.
	if mood.Engagement >= 0.5 {
		t.Fatalf("expected raw low engagement on first turn, got %.2f", mood.Engagement)
	}
}
