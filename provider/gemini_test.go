package provider

import (
	"context"
	"testing"

	"google.golang.org/genai"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
)

func TestBuildContents_RoleMapping(t *testing.T) {
	history := []moodtuner.Message{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}

	contents := buildContents("second question", history)

	if len(contents) != 3 {
		t.Fatalf("got %d contents", len(contents))
	}
	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, want := range wantRoles {
		if contents[i].Role != string(want) {
			t.Fatalf("content %d: got role %q, want %q", i, contents[i].Role, want)
		}
	}
	if contents[2].Parts[0].Text != "second question" {
		t.Fatalf("prompt must come last, got %q", contents[2].Parts[0].Text)
	}
}

func TestBuildContents_NoHistory(t *testing.T) {
	contents := buildContents("only prompt", nil)

	if len(contents) != 1 || contents[0].Role != string(genai.RoleUser) {
		t.Fatalf("unexpected contents: %+v", contents)
	}
}

func TestNewGeminiProvider_ModelDefault(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), moodtuner.ProviderConfig{
		Type:   "gemini",
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.model != "gemini-2.0-flash" {
		t.Fatalf("got default model %q", p.model)
	}
	if p.Name() != "gemini" {
		t.Fatalf("got name %q", p.Name())
	}
}
