package moodtuner

// ──────────────────────────────────────────────
// Initiative Decider — threshold + preference-table dispatch
// ──────────────────────────────────────────────

// InitiativeKind is the behavioral steering move attached to a reply.
type InitiativeKind string

const (
	InitiativeNone      InitiativeKind = "none"
	InitiativeClarify   InitiativeKind = "clarify"
	InitiativeReassure  InitiativeKind = "reassure"
	InitiativeChallenge InitiativeKind = "challenge"
)

// InitiativeDecision is the per-turn steering decision. Value type.
// Kind is InitiativeNone iff Taken is false.
type InitiativeDecision struct {
	Taken bool           `json:"taken"`
	Kind  InitiativeKind `json:"kind"`
}

// negativeLabels are the mood labels whose energy counts as
// negative-affect intensity.
var negativeLabels = map[MoodLabel]bool{
	MoodConcerned:    true,
	MoodFrustrated:   true,
	MoodDisappointed: true,
}

// kindPreferences maps mood label to an ordered list of initiative kinds.
// Evaluated top to bottom after the cooldown exclusion.
var kindPreferences = map[MoodLabel][]InitiativeKind{
	MoodFrustrated:    {InitiativeReassure, InitiativeClarify, InitiativeChallenge},
	MoodConcerned:     {InitiativeReassure, InitiativeClarify, InitiativeChallenge},
	MoodDisappointed:  {InitiativeReassure, InitiativeChallenge, InitiativeClarify},
	MoodBored:         {InitiativeChallenge, InitiativeClarify, InitiativeReassure},
	MoodContemplative: {InitiativeChallenge, InitiativeClarify, InitiativeReassure},
}

// fallback order for labels without an entry above.
var defaultPreference = []InitiativeKind{InitiativeClarify, InitiativeReassure, InitiativeChallenge}

// InitiativeDecider decides when the system should steer the
// conversation rather than passively answer.
type InitiativeDecider struct {
	cfg InitiativeConfig
}

// NewInitiativeDecider creates a decider.
func NewInitiativeDecider(cfg InitiativeConfig) *InitiativeDecider {
	return &InitiativeDecider{cfg: cfg}
}

// Decide determines whether to take initiative and which kind, honoring
// the kind cooldown over the last K turns. Escalation patterns surface
// here through the frustrated label carrying high energy — the mood rule
// table folds them in upstream. Pure function of its inputs.
func (d *InitiativeDecider) Decide(mood MoodState, history TurnHistory) InitiativeDecision {
	if !d.shouldTake(mood, history) {
		return InitiativeDecision{Taken: false, Kind: InitiativeNone}
	}

	prefs, ok := kindPreferences[mood.Label]
	if !ok {
		prefs = defaultPreference
	}

	recent := history.RecentKinds(d.cfg.KindCooldown)
	used := make(map[InitiativeKind]bool, len(recent))
	for _, k := range recent {
		if k != InitiativeNone {
			used[k] = true
		}
	}

	for _, kind := range prefs {
		if !used[kind] {
			return InitiativeDecision{Taken: true, Kind: kind}
		}
	}

	// All preferred kinds are on cooldown: fall back to the
	// least-recently-used one. The decision is never dropped.
	return InitiativeDecision{Taken: true, Kind: leastRecentlyUsed(prefs, history)}
}

func (d *InitiativeDecider) shouldTake(mood MoodState, history TurnHistory) bool {
	threshold := d.cfg.NegativeThreshold - d.cfg.InitiativeBias
	if negativeLabels[mood.Label] && mood.Energy >= threshold {
		return true
	}
	if mood.Label == MoodBored {
		return true
	}
	if mood.Engagement <= d.cfg.LowEngagement {
		return true
	}
	// Sustained disengagement trend
	if history.Len() >= 2 && history.MoodTrend(d.cfg.TrendWindow) <= -d.cfg.TrendDrop {
		return true
	}
	return false
}

// leastRecentlyUsed scans history backwards and returns the preferred
// kind whose last use is furthest in the past (or never used).
func leastRecentlyUsed(prefs []InitiativeKind, history TurnHistory) InitiativeKind {
	kinds := history.RecentKinds(history.Len())
	lastUse := make(map[InitiativeKind]int)
	for i, k := range kinds {
		lastUse[k] = i
	}

	best := prefs[0]
	bestIdx := history.Len() + 1
	for _, kind := range prefs {
		idx, seen := lastUse[kind]
		if !seen {
			return kind
		}
		if idx < bestIdx {
			bestIdx = idx
			best = kind
		}
	}
	return best
}
