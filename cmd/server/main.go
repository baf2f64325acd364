package main

import (
	"fmt"
	"log"
	"os"

	"github.com/RichardoC/bioexpert/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg       config.Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "bioexpert",
	Short: "Biology and pharmacology chat assistant",
	Long: `BioExpert serves a chat page backed by an OpenAI-compatible completion API.
Replies are rewritten to a consistent markdown house style before they are shown.`,
	PersistentPreRunE: checkConfig,
	RunE:              runServe,
}

func init() {
	// .env must be loaded before flag defaults are taken from the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, configErr = config.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Model, "model", cfg.Model, "model identifier")
	flags.StringVar(&cfg.OpenAIBaseURL, "base-url", cfg.OpenAIBaseURL, "OpenAI-compatible API base URL")
	flags.IntVar(&cfg.NormalizePasses, "normalize-passes", cfg.NormalizePasses, "maximum normalizer passes over each reply")
	flags.BoolVar(&cfg.Dev, "dev", cfg.Dev, "human-readable debug logging")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flags.StringVar(&cfg.DatabaseDSN, "db", cfg.DatabaseDSN, "SQLite DSN for conversations (empty keeps them in memory)")
	flags.DurationVar(&cfg.SessionIdle, "session-idle", cfg.SessionIdle, "drop in-memory sessions idle this long (0 keeps them)")
	flags.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "maximum in-memory sessions (0 means no limit)")

	rootCmd.AddCommand(serveCmd, askCmd)
}

// checkConfig stops every subcommand when the environment could not be parsed.
func checkConfig(_ *cobra.Command, _ []string) error {
	if configErr != nil {
		return fmt.Errorf("invalid configuration: %w", configErr)
	}
	return nil
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
