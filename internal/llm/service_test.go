package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/RichardoC/bioexpert/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

type fakeModel struct {
	resp *llms.ContentResponse
	err  error

	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func textOf(t *testing.T, mc llms.MessageContent) string {
	t.Helper()
	require.Len(t, mc.Parts, 1)
	part, ok := mc.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestComplete_SendsConversation(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "first"}, {Content: "second"}},
	}}
	svc := NewWithModel(fake, Config{}, zap.NewNop())

	reply, err := svc.Complete(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "what is DNA?"},
		{Role: models.RoleAssistant, Content: "a molecule"},
		{Role: models.RoleUser, Content: "more"},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", reply)

	require.Len(t, fake.messages, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, fake.messages[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.messages[3].Role)
	assert.Equal(t, "what is DNA?", textOf(t, fake.messages[1]))

	assert.InDelta(t, 0.7, fake.opts.Temperature, 1e-9)
	assert.Equal(t, 1500, fake.opts.MaxTokens)
}

func TestComplete_CustomSettings(t *testing.T) {
	fake := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}}
	svc := NewWithModel(fake, Config{Temperature: 0.2, MaxTokens: 200}, zap.NewNop())

	_, err := svc.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, fake.opts.Temperature, 1e-9)
	assert.Equal(t, 200, fake.opts.MaxTokens)
}

func TestComplete_PropagatesError(t *testing.T) {
	remote := errors.New("quota exceeded")
	svc := NewWithModel(&fakeModel{err: remote}, Config{}, zap.NewNop())

	_, err := svc.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, remote)
}

func TestComplete_NoChoices(t *testing.T) {
	svc := NewWithModel(&fakeModel{resp: &llms.ContentResponse{}}, Config{}, zap.NewNop())

	_, err := svc.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestComplete_MissingTokenFailsOnFirstUse(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	svc := New(Config{}, zap.NewNop())

	_, err := svc.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize model client")
}

func TestNew_Defaults(t *testing.T) {
	svc := New(Config{Token: "t"}, zap.NewNop())
	assert.Equal(t, DefaultModel, svc.cfg.Model)
	assert.Equal(t, DefaultTemperature, svc.cfg.Temperature)
	assert.Equal(t, DefaultMaxTokens, svc.cfg.MaxTokens)
}
