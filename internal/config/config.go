// Package config loads runtime settings for the BioExpert server.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/RichardoC/bioexpert/internal/llm"
)

// Config holds the environment driven configuration for the server.
type Config struct {
	Addr            string        `env:"BIOEXPERT_ADDR" envDefault:":8000"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	Model           string        `env:"BIOEXPERT_MODEL" envDefault:"gpt-4o-mini"`
	DatabaseDSN     string        `env:"BIOEXPERT_DB"`
	NormalizePasses int           `env:"BIOEXPERT_NORMALIZE_PASSES" envDefault:"1"`
	SessionIdle     time.Duration `env:"BIOEXPERT_SESSION_IDLE" envDefault:"2h"`
	MaxSessions     int           `env:"BIOEXPERT_MAX_SESSIONS" envDefault:"10000"`
	Dev             bool          `env:"BIOEXPERT_DEV" envDefault:"false"`
}

// Load parses environment variables into Config. The API key is not
// validated here; a missing key fails the first completion.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.NormalizePasses < 1 {
		return Config{}, fmt.Errorf("BIOEXPERT_NORMALIZE_PASSES must be at least 1, got %d", cfg.NormalizePasses)
	}
	if cfg.SessionIdle < 0 {
		return Config{}, fmt.Errorf("BIOEXPERT_SESSION_IDLE must not be negative, got %s", cfg.SessionIdle)
	}
	if cfg.MaxSessions < 0 {
		return Config{}, fmt.Errorf("BIOEXPERT_MAX_SESSIONS must not be negative, got %d", cfg.MaxSessions)
	}

	return cfg, nil
}

// LLM returns the gateway settings.
func (c Config) LLM() llm.Config {
	return llm.Config{
		BaseURL: c.OpenAIBaseURL,
		Token:   c.OpenAIAPIKey,
		Model:   c.Model,
	}
}
