package moodtuner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Config — all tunable constants in one place
// ──────────────────────────────────────────────
//
// The exact thresholds are deliberately exposed rather than buried:
// smoothing weights, variety cutoff and the kind cooldown are the knobs
// operators actually turn.

// MoodConfig tunes the mood tracker.
type MoodConfig struct {
	// RawWeight is the share of the freshly extracted signal state in
	// the exponential blend; the prior state gets 1-RawWeight.
	RawWeight float64 `yaml:"raw_weight"`
}

// InitiativeConfig tunes the initiative decider.
type InitiativeConfig struct {
	NegativeThreshold float64 `yaml:"negative_threshold"` // negative-affect energy trigger
	LowEngagement     float64 `yaml:"low_engagement"`     // engagement floor trigger
	KindCooldown      int     `yaml:"kind_cooldown"`      // K: no kind repeat within K turns
	TrendWindow       int     `yaml:"trend_window"`       // turns considered for trend trigger
	TrendDrop         float64 `yaml:"trend_drop"`         // mean engagement drop that triggers
	InitiativeBias    float64 `yaml:"initiative_bias"`    // personality-derived threshold shift
}

// StyleConfig tunes the response transformer.
type StyleConfig struct {
	VarietyWindow    int      `yaml:"variety_window"` // N: recent replies compared against
	VarietyCutoff    float64  `yaml:"variety_cutoff"` // minimum acceptable variety score
	MaxWords         int      `yaml:"max_words"`      // 0 = unlimited
	MinPreserveWords int      `yaml:"min_preserve_words"`
	ForbiddenPhrases []string `yaml:"forbidden_phrases"`
}

// PersonalityConfig carries the fixed personality parameters that bias
// pipeline behavior. Interpretable constants, not learned values.
type PersonalityConfig struct {
	Curiosity  float64 `yaml:"curiosity"`
	Empathy    float64 `yaml:"empathy"`
	Initiative float64 `yaml:"initiative"` // >0.5 lowers initiative thresholds
}

// ProviderConfig selects and configures the LLM backend.
type ProviderConfig struct {
	Type        string  `yaml:"type"` // "gemini" / "local"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend   string `yaml:"backend"` // "none" / "file" / "redis"
	FilePath  string `yaml:"file_path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// ServerConfig configures the optional HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full middleware configuration.
type Config struct {
	Mood        MoodConfig        `yaml:"mood"`
	Initiative  InitiativeConfig  `yaml:"initiative"`
	Style       StyleConfig       `yaml:"style"`
	Personality PersonalityConfig `yaml:"personality"`
	Provider    ProviderConfig    `yaml:"provider"`
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() Config {
	return Config{
		Mood: MoodConfig{
			RawWeight: 0.7,
		},
		Initiative: InitiativeConfig{
			NegativeThreshold: 0.7,
			LowEngagement:     0.35,
			KindCooldown:      2,
			TrendWindow:       3,
			TrendDrop:         0.15,
		},
		Style: StyleConfig{
			VarietyWindow:    5,
			VarietyCutoff:    0.4,
			MaxWords:         120,
			MinPreserveWords: 12,
			ForbiddenPhrases: []string{
				"As an AI", "As a language model", "As an artificial intelligence",
				"I hope this helps", "Is there anything else I can help you with",
				"Feel free to ask", "I'm here to help",
			},
		},
		Personality: PersonalityConfig{
			Curiosity:  0.7,
			Empathy:    0.6,
			Initiative: 0.6,
		},
		Provider: ProviderConfig{
			Type:        "local",
			Model:       "gemini-2.0-flash",
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Store: StoreConfig{
			Backend:  "none",
			FilePath: "data/turns.jsonl",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// initiativeBias converts the personality initiative parameter into a
// threshold shift: values above 0.5 make the decider more proactive.
func (p PersonalityConfig) initiativeBias() float64 {
	return (p.Initiative - 0.5) * 0.2
}
