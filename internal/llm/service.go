package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/RichardoC/bioexpert/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1500
)

// ErrNoChoices is returned when the remote API answers without any choice.
var ErrNoChoices = errors.New("completion returned no choices")

type Config struct {
	BaseURL     string
	Token       string
	Model       string
	Temperature float64
	MaxTokens   int
}

func (c *Config) setDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Service sends conversations to an OpenAI-compatible completion API.
type Service struct {
	cfg    Config
	logger *zap.Logger

	newModel func() (llms.Model, error)

	mu  sync.Mutex
	llm llms.Model
}

// New returns a Service whose client is built on the first completion, so
// a missing or bad token fails that request rather than startup.
func New(cfg Config, logger *zap.Logger) *Service {
	cfg.setDefaults()
	s := &Service{cfg: cfg, logger: logger}
	s.newModel = func() (llms.Model, error) {
		opts := []openai.Option{
			openai.WithToken(cfg.Token),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	}
	return s
}

// NewWithModel wraps an existing model.
func NewWithModel(model llms.Model, cfg Config, logger *zap.Logger) *Service {
	cfg.setDefaults()
	return &Service{cfg: cfg, logger: logger, llm: model}
}

func (s *Service) model() (llms.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.llm != nil {
		return s.llm, nil
	}
	m, err := s.newModel()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}
	s.llm = m
	return m, nil
}

func messageType(role models.Role) schema.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

// Complete sends the whole conversation and returns the text of the first
// choice.
func (s *Service) Complete(ctx context.Context, messages []models.Message) (string, error) {
	m, err := s.model()
	if err != nil {
		return "", err
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	if ce := s.logger.Check(zap.DebugLevel, "Sending completion request"); ce != nil {
		ce.Write(
			zap.String("model", s.cfg.Model),
			zap.Int("messages", len(messages)),
			zap.Int("prompt_tokens", countTokens(s.cfg.Model, messages)),
		)
	}

	resp, err := m.GenerateContent(ctx, content,
		llms.WithTemperature(s.cfg.Temperature),
		llms.WithMaxTokens(s.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

// countTokens is an estimate for logging only.
func countTokens(model string, messages []models.Message) int {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return llms.CountTokens(model, b.String())
}
