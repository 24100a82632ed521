package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

// LocalProvider is an offline mock backend. It produces deterministic
// canned replies keyed by the prompt content, so pipeline behavior is
// reproducible without network access or credentials.
type LocalProvider struct{}

// NewLocalProvider creates the mock backend.
func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

var mockReplies = []string{
	"That's an interesting point. There are a few angles worth looking at, and the details you mention change which one applies.",
	"From what you describe, the situation has a clear cause and a couple of practical ways forward.",
	"Let me lay out what I understand so far and where the open questions are.",
	"There is a straightforward answer here, though it comes with one caveat worth knowing about.",
	"Based on what you've shared, here's the picture as I see it and what I'd look at next.",
}

func (p *LocalProvider) Generate(ctx context.Context, prompt string, history []moodtuner.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}
	h := fnv.New32a()
	h.Write([]byte(prompt))
	// History length shifts the pick so repeated identical prompts in
	// one session still move through the canned set.
	idx := (int(h.Sum32()) + len(history)/2) % len(mockReplies)
	if idx < 0 {
		idx = -idx
	}
	return mockReplies[idx], nil
}

func (p *LocalProvider) Name() string { return "local" }

// Compile-time interface check.
var _ moodtuner.Provider = (*LocalProvider)(nil)
