package provider

import (
	"context"
	"log"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

// New creates the provider selected by cfg.Type. Unknown types and
// backends that fail to initialize fall back to the local mock so a
// session can always start.
func New(ctx context.Context, cfg moodtuner.ProviderConfig) moodtuner.Provider {
	switch cfg.Type {
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			log.Printf("[Provider] Gemini unavailable (%v), falling back to local", err)
			return NewLocalProvider()
		}
		return p
	case "local", "":
		return NewLocalProvider()
	default:
		log.Printf("[Provider] Unknown provider type %q, falling back to local", cfg.Type)
		return NewLocalProvider()
	}
}
