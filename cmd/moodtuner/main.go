package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	moodtuner "github.com/paoloarmento-cloud/LLM-Mood-Tuner"
	"github.com/paoloarmento-cloud/LLM-Mood-Tuner/provider"
	"github.com/paoloarmento-cloud/LLM-Mood-Tuner/server"
	"github.com/paoloarmento-cloud/LLM-Mood-Tuner/store"
)

var (
	configPath   string
	providerType string
	verbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "moodtuner",
	Short: "Mood-tuning middleware between a user and an LLM backend",
	Long: `moodtuner sits between a user and a language-model backend. It tracks
the user's mood across turns, decides when the reply should take
conversational initiative, and rewrites the raw reply with
mood-consistent, non-repetitive phrasing.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		return err
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation loop on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, prov, persist, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		if persist != nil {
			defer persist.Close()
		}
		pipeline := moodtuner.NewPipeline(cfg, prov, persist, logger)

		fmt.Printf("moodtuner — session %s, provider %s\n", pipeline.SessionID, prov.Name())
		fmt.Println("type 'quit' to exit")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("\nYou: ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if input == "quit" || input == "exit" || input == "q" {
				break
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			result, err := pipeline.ProcessTurn(ctx, input)
			cancel()
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}

			fmt.Printf("\nAI: %s\n", result.Reply)
			m := result.Metrics
			fmt.Printf("   [mood=%s energy=%.2f engagement=%.2f initiative=%s variety=%.2f]\n",
				m.MoodLabel, m.Energy, m.Engagement, m.InitiativeKind, m.VarietyScore)
		}

		fmt.Printf("\nsession ended after %d turns\n", pipeline.History().Len())
		return scanner.Err()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, prov, _, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		return server.NewServer(cfg, prov, logger).Start()
	},
}

// bootstrap loads env + config and builds the provider and persistence
// backend the config selects.
func bootstrap(ctx context.Context) (moodtuner.Config, moodtuner.Provider, moodtuner.Persistence, error) {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg := moodtuner.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = moodtuner.LoadConfig(configPath)
		if err != nil {
			return cfg, nil, nil, err
		}
	}
	if providerType != "" {
		cfg.Provider.Type = providerType
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	prov := provider.New(ctx, cfg.Provider)

	var persist moodtuner.Persistence
	switch cfg.Store.Backend {
	case "file":
		fs, err := store.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			return cfg, nil, nil, err
		}
		persist = fs
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisStoreConfig{
			Addr:    cfg.Store.RedisAddr,
			DB:      cfg.Store.RedisDB,
			Session: "default",
		})
		if err != nil {
			return cfg, nil, nil, err
		}
		persist = rs
	}

	return cfg, prov, persist, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&providerType, "provider", "p", "", "override provider type (gemini/local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(chatCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
