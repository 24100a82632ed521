package moodtuner

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Turn Store — append-only per-session turn log
// ──────────────────────────────────────────────

// TurnRecord captures one fully processed conversational turn.
// Immutable once appended.
type TurnRecord struct {
	TurnIndex      int                `json:"turn_index"`
	UserMessage    string             `json:"user_message"`
	RawReply       string             `json:"raw_reply"`
	ProcessedReply string             `json:"processed_reply"`
	Mood           MoodState          `json:"mood"`
	Initiative     InitiativeDecision `json:"initiative"`
	VarietyScore   float64            `json:"variety_score"`
	Timestamp      time.Time          `json:"timestamp"`
}

// TurnHistory is the read-only view handed to the pipeline engines.
// The engines query trend context through it; only the pipeline appends.
type TurnHistory interface {
	// Len returns the number of recorded turns.
	Len() int
	// Recent returns up to n most recent records, oldest first.
	Recent(n int) []TurnRecord
	// LastMood returns the mood of the most recent turn, if any.
	LastMood() (MoodState, bool)
	// RecentKinds returns the initiative kinds of the last k turns,
	// oldest first. "none" kinds are included.
	RecentKinds(k int) []InitiativeKind
	// RecentReplies returns up to n most recent processed replies, oldest first.
	RecentReplies(n int) []string
	// MoodTrend returns the mean per-turn engagement delta over the last
	// n turns. Negative values mean the user is disengaging.
	MoodTrend(n int) float64
}

// TurnStore is the append-only ordered log of TurnRecords for one session.
// It owns all history and derives rolling aggregates on demand.
// Safe for concurrent readers; appends are serialized by the pipeline.
type TurnStore struct {
	mu      sync.RWMutex
	records []TurnRecord
	nextIdx *atomic.Int64
}

// NewTurnStore creates an empty store. Turn indices start at 1.
func NewTurnStore() *TurnStore {
	return &TurnStore{nextIdx: atomic.NewInt64(1)}
}

// NextIndex returns the index the next appended record must carry.
func (s *TurnStore) NextIndex() int {
	return int(s.nextIdx.Load())
}

// Append adds a record. The record's TurnIndex must equal NextIndex();
// the store enforces the gapless monotonic invariant.
func (s *TurnStore) Append(record TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.TurnIndex != int(s.nextIdx.Load()) {
		return ErrInvalidState
	}
	s.records = append(s.records, record)
	s.nextIdx.Inc()
	return nil
}

func (s *TurnStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *TurnStore) Recent(n int) []TurnRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.records) == 0 {
		return nil
	}
	start := len(s.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]TurnRecord, len(s.records)-start)
	copy(out, s.records[start:])
	return out
}

func (s *TurnStore) LastMood() (MoodState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return MoodState{}, false
	}
	return s.records[len(s.records)-1].Mood, true
}

func (s *TurnStore) RecentKinds(k int) []InitiativeKind {
	recent := s.Recent(k)
	kinds := make([]InitiativeKind, 0, len(recent))
	for _, r := range recent {
		kinds = append(kinds, r.Initiative.Kind)
	}
	return kinds
}

func (s *TurnStore) RecentReplies(n int) []string {
	recent := s.Recent(n)
	replies := make([]string, 0, len(recent))
	for _, r := range recent {
		replies = append(replies, r.ProcessedReply)
	}
	return replies
}

// MoodTrend averages the engagement delta between consecutive turns in
// the last n records. Returns 0 with fewer than two turns.
func (s *TurnStore) MoodTrend(n int) float64 {
	recent := s.Recent(n)
	if len(recent) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(recent); i++ {
		sum += recent[i].Mood.Engagement - recent[i-1].Mood.Engagement
	}
	return sum / float64(len(recent)-1)
}

// Compile-time interface check.
var _ TurnHistory = (*TurnStore)(nil)
