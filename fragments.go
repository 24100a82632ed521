package moodtuner

// ──────────────────────────────────────────────
// Phrase Fragments — data driving the response transformer
// ──────────────────────────────────────────────
//
// Each table maps a mood label or initiative kind to a ranked list of
// alternatives. Rank 0 is preferred; the transformer advances down the
// list when the variety window rejects a composition. Lists are data,
// not templates: the raw reply body is always carried through.

// fragmentSet is one concrete selection used to compose a reply.
type fragmentSet struct {
	Opener     string
	Empathy    string
	Initiative string
	Closer     string
}

var openerFragments = map[MoodLabel][]string{
	MoodConcerned: {
		"I hear you.",
		"That sounds rough.",
		"Okay, let's slow down for a second.",
	},
	MoodFrustrated: {
		"You're right to be annoyed.",
		"I get why that's frustrating.",
		"Fair enough, that shouldn't keep happening.",
	},
	MoodDisappointed: {
		"I'm sorry it landed that way.",
		"That's a letdown, I know.",
		"Not the outcome you wanted.",
	},
	MoodExcited: {
		"Love the energy!",
		"Now we're talking!",
		"That's genuinely exciting.",
	},
	MoodEngaged: {
		"Good question.",
		"Glad you brought that up.",
		"Right, let's dig in.",
	},
	MoodBored: {
		"Let me try a different angle.",
		"Okay, switching gears.",
		"Here's something less dry.",
	},
	MoodContemplative: {
		"Worth sitting with for a moment.",
		"There's a lot underneath that.",
		"Let's think it through.",
	},
}

var empathyFragments = map[MoodLabel][]string{
	MoodConcerned: {
		"What you're describing matters, and I want to get it right.",
		"I can tell this has been weighing on you.",
		"It makes sense that you'd feel that way.",
	},
	MoodFrustrated: {
		"Having the same thing go wrong repeatedly would wear anyone down.",
		"You shouldn't have to keep repeating yourself.",
		"I understand the pattern is the real problem here.",
	},
	MoodDisappointed: {
		"I know this isn't what you were hoping for.",
		"Your disappointment is understandable.",
		"It's fair to have expected better.",
	},
}

var initiativeFragments = map[InitiativeKind][]string{
	InitiativeClarify: {
		"To make sure I'm on the right track — what part matters most to you right now?",
		"Can you tell me which piece of this went wrong most recently?",
		"Help me pin this down: what would a good outcome look like for you?",
	},
	InitiativeReassure: {
		"I'm not going anywhere — we'll work through this together.",
		"You have my full attention on this until it's sorted.",
		"This is fixable, and I'll stay with it.",
	},
	InitiativeChallenge: {
		"Here's a thought: what if the real issue is something we haven't named yet?",
		"Let me push back gently — have you considered the opposite approach?",
		"What would happen if we flipped this problem around entirely?",
	},
}

var closerFragments = map[MoodLabel][]string{
	MoodExcited: {
		"Keep that momentum going.",
		"More where that came from.",
	},
	MoodBored: {
		"Say the word and we'll change direction.",
		"Your call where we take it next.",
	},
}

// fragmentsFor assembles the rank-th fragment set for (label, kind).
// Each table is indexed independently modulo its own length, so every
// rank yields a distinct combination until all alternatives are exhausted.
func fragmentsFor(label MoodLabel, kind InitiativeKind, rank int) fragmentSet {
	pick := func(list []string) string {
		if len(list) == 0 {
			return ""
		}
		return list[rank%len(list)]
	}
	set := fragmentSet{
		Opener:  pick(openerFragments[label]),
		Empathy: pick(empathyFragments[label]),
		Closer:  pick(closerFragments[label]),
	}
	if kind != InitiativeNone {
		set.Initiative = pick(initiativeFragments[kind])
	}
	return set
}

// maxFragmentRank is the number of distinct ranks worth trying before
// the transformer accepts the best candidate seen so far.
func maxFragmentRank(label MoodLabel, kind InitiativeKind) int {
	max := 1
	for _, list := range [][]string{
		openerFragments[label],
		empathyFragments[label],
		initiativeFragments[kind],
		closerFragments[label],
	} {
		if len(list) > max {
			max = len(list)
		}
	}
	return max
}
