package moodtuner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ──────────────────────────────────────────────
// Pipeline — per-turn orchestration state machine
// ──────────────────────────────────────────────
//
// Each turn walks Received → Provider → Analyzed → Decided →
// Transformed → Logged → Done, strictly in order. On failure the turn
// is abandoned whole: no partial TurnRecord is ever appended and the
// error names the stage that failed.

// Stage identifies a pipeline stage for error attribution.
type Stage string

const (
	StageReceived    Stage = "received"
	StageProvider    Stage = "provider"
	StageAnalyzed    Stage = "analyzed"
	StageDecided     Stage = "decided"
	StageTransformed Stage = "transformed"
	StageLogged      Stage = "logged"
	StageDone        Stage = "done"
)

// Metrics is the per-turn bundle returned to the caller.
type Metrics struct {
	MoodLabel       MoodLabel      `json:"mood_label"`
	Energy          float64        `json:"energy"`
	Engagement      float64        `json:"engagement"`
	InitiativeTaken bool           `json:"initiative_taken"`
	InitiativeKind  InitiativeKind `json:"initiative_kind"`
	VarietyScore    float64        `json:"variety_score"`
	RawSimilarity   float64        `json:"raw_similarity"` // raw vs processed reply
	Trend           string         `json:"trend"`          // "high" / "stable" / "low"
	Degraded        bool           `json:"degraded"`       // persistence failed this turn
}

// TurnResult is the caller-facing outcome of one processed turn.
type TurnResult struct {
	Reply   string     `json:"reply"`
	Record  TurnRecord `json:"record"`
	Metrics Metrics    `json:"metrics"`
}

// PromptFn optionally augments the prompt sent to the provider
// (e.g. injecting personality parameters upstream). Nil sends the user
// message unchanged.
type PromptFn func(userMessage string, history TurnHistory) string

// Pipeline owns one session's TurnStore and composes the tracker,
// decider and transformer per turn. One Pipeline per session; sessions
// never share state.
type Pipeline struct {
	SessionID string

	// BuildPrompt is an extension point; see PromptFn.
	BuildPrompt PromptFn

	cfg         Config
	provider    Provider
	store       *TurnStore
	tracker     *MoodTracker
	decider     *InitiativeDecider
	transformer *ResponseTransformer
	persist     Persistence
	sim         TextSimilarity
	logger      *zap.Logger
	inFlight    *atomic.Bool
}

// NewPipeline creates a session pipeline. persist and logger may be nil
// (no durable storage, no logging).
func NewPipeline(cfg Config, provider Provider, persist Persistence, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	icfg := cfg.Initiative
	icfg.InitiativeBias += cfg.Personality.initiativeBias()

	sim := JaccardSimilarity{}
	return &Pipeline{
		SessionID:   uuid.NewString(),
		cfg:         cfg,
		provider:    provider,
		store:       NewTurnStore(),
		tracker:     NewMoodTracker(cfg.Mood),
		decider:     NewInitiativeDecider(icfg),
		transformer: NewResponseTransformer(cfg.Style, sim),
		persist:     persist,
		sim:         sim,
		logger:      logger,
		inFlight:    atomic.NewBool(false),
	}
}

// History exposes the read-only view of this session's turn log.
func (p *Pipeline) History() TurnHistory { return p.store }

// ProcessTurn runs one full turn. Turns within a session are strictly
// serialized: a second submission while one is in flight returns
// ErrTurnInFlight instead of interleaving stages.
func (p *Pipeline) ProcessTurn(ctx context.Context, userMessage string) (*TurnResult, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrTurnInFlight
	}
	defer p.inFlight.Store(false)

	// Provider call — the only blocking stage. On failure or
	// cancellation nothing has been computed or stored yet, so the
	// session state is untouched.
	prompt := userMessage
	if p.BuildPrompt != nil {
		prompt = p.BuildPrompt(userMessage, p.store)
	}
	rawReply, err := p.provider.Generate(ctx, prompt, p.providerHistory())
	if err != nil {
		return nil, p.fail(StageProvider, &ProviderError{Provider: p.provider.Name(), Err: err})
	}

	// Analyzed
	mood := p.tracker.Analyze(userMessage, p.store)

	// Decided
	decision := p.decider.Decide(mood, p.store)

	// Transformed
	processed, variety, err := p.transformer.Transform(rawReply, mood, decision, p.store)
	if err != nil {
		return nil, p.fail(StageTransformed, err)
	}

	// Logged — the record is appended whole or not at all.
	record := TurnRecord{
		TurnIndex:      p.store.NextIndex(),
		UserMessage:    userMessage,
		RawReply:       rawReply,
		ProcessedReply: processed,
		Mood:           mood,
		Initiative:     decision,
		VarietyScore:   variety,
		Timestamp:      time.Now().UTC(),
	}
	if err := p.store.Append(record); err != nil {
		return nil, p.fail(StageLogged, err)
	}

	degraded := false
	if p.persist != nil {
		if err := p.persist.Append(ctx, record); err != nil {
			perr := &PersistenceError{Op: "append", Err: err}
			p.logger.Warn("persistence failed, continuing in-memory",
				zap.String("session", p.SessionID),
				zap.Int("turn", record.TurnIndex),
				zap.Error(perr))
			degraded = true
		}
	}

	metrics := Metrics{
		MoodLabel:       mood.Label,
		Energy:          mood.Energy,
		Engagement:      mood.Engagement,
		InitiativeTaken: decision.Taken,
		InitiativeKind:  decision.Kind,
		VarietyScore:    variety,
		RawSimilarity:   p.sim.Similarity(rawReply, processed),
		Trend:           classifyTrend(mood.Engagement),
		Degraded:        degraded,
	}

	p.logger.Info("turn processed",
		zap.String("session", p.SessionID),
		zap.Int("turn", record.TurnIndex),
		zap.String("mood", string(mood.Label)),
		zap.Float64("engagement", mood.Engagement),
		zap.Bool("initiative", decision.Taken),
		zap.String("kind", string(decision.Kind)),
		zap.Float64("variety", variety))

	return &TurnResult{Reply: processed, Record: record, Metrics: metrics}, nil
}

func (p *Pipeline) fail(stage Stage, err error) error {
	serr := &StageError{Stage: stage, Err: err}
	p.logger.Error("turn failed",
		zap.String("session", p.SessionID),
		zap.String("stage", string(stage)),
		zap.Error(err))
	return serr
}

// providerHistory converts recent turns to provider context messages.
func (p *Pipeline) providerHistory() []Message {
	recent := p.store.Recent(p.cfg.Style.VarietyWindow)
	msgs := make([]Message, 0, len(recent)*2)
	for _, r := range recent {
		msgs = append(msgs,
			Message{Role: "user", Content: r.UserMessage},
			Message{Role: "assistant", Content: r.ProcessedReply},
		)
	}
	return msgs
}

func classifyTrend(engagement float64) string {
	switch {
	case engagement > 0.7:
		return "high"
	case engagement > 0.4:
		return "stable"
	default:
		return "low"
	}
}
