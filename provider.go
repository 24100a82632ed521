package moodtuner

import "context"

// ──────────────────────────────────────────────
// LLM Provider — external collaborator contract
// ──────────────────────────────────────────────

// Message is one prior exchange item passed to the provider as context.
type Message struct {
	Role    string `json:"role"` // "user" / "assistant"
	Content string `json:"content"`
}

// Provider is the capability object for the language-model backend.
// The pipeline depends only on this contract and on *ProviderError as
// its failure signal. Generate is the sole blocking pipeline stage and
// must honor ctx cancellation.
type Provider interface {
	Generate(ctx context.Context, prompt string, history []Message) (string, error)
	Name() string
}
