package moodtuner

import "context"

// ──────────────────────────────────────────────
// Persistence — durable turn-log collaborator contract
// ──────────────────────────────────────────────

// Persistence is the pluggable durable-storage backend for turn records.
// The pipeline flushes each appended record through it; failures are
// wrapped in *PersistenceError, logged, and the session keeps running on
// in-memory state with the turn flagged degraded.
//
// Implementations live in the store subpackage (Redis, JSONL file).
type Persistence interface {
	Append(ctx context.Context, record TurnRecord) error
	ReadRecent(ctx context.Context, n int) ([]TurnRecord, error)
	Close() error
}
