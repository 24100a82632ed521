package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

// GeminiProvider backs the pipeline with Google's Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, cfg moodtuner.ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// buildContents converts the prompt plus prior exchanges into the
// ordered content list the Gemini API expects.
func buildContents(prompt string, history []moodtuner.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		var role genai.Role = genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, history []moodtuner.Message) (string, error) {
	contents := buildContents(prompt, history)

	config := &genai.GenerateContentConfig{}
	if p.temperature > 0 {
		config.Temperature = genai.Ptr(float32(p.temperature))
	}
	if p.maxTokens > 0 {
		config.MaxOutputTokens = int32(p.maxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Compile-time interface check.
var _ moodtuner.Provider = (*GeminiProvider)(nil)
