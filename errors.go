package moodtuner

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline operations.
var (
	// ErrEmptyReply is returned when the provider produced no text to transform.
	ErrEmptyReply = errors.New("empty raw reply")

	// ErrTurnInFlight is returned when a turn is submitted while another
	// turn of the same session is still being processed.
	ErrTurnInFlight = errors.New("turn already in flight")

	// ErrInvalidState signals that the pipeline was driven out of sequence.
	// This is a programming error, not a runtime condition.
	ErrInvalidState = errors.New("invalid pipeline state")
)

// ProviderError wraps a backend failure (network/auth/quota).
// The pipeline never retries these; retry policy belongs to the provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure. The session keeps running on
// in-memory state when one occurs; the turn is flagged degraded.
type PersistenceError struct {
	Op  string // "append" / "read_recent"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StageError attributes a failure to the pipeline stage where it occurred.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
