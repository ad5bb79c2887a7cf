package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// Defaults for the OpenAI feedback generator.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"

	defaultTemperature         = 0.2
	defaultMaxCompletionTokens = 30000
	defaultRequestTimeout      = 120 * time.Second
)

const feedbackSystemPrompt = `You are a meeting facilitator assistant. You compare a meeting's planned agenda against what was actually discussed, and produce concise, actionable feedback in two parts. First, agenda coverage: for each agenda item, whether it was covered, missed, or only touched briefly, with supporting evidence from the transcript. Second, a per-participant contribution summary: for each participant, which agenda items they engaged with. Be specific and cite speakers.`

// FeedbackGenerator produces agenda coverage feedback for a transcript.
type FeedbackGenerator interface {
	Generate(ctx context.Context, agenda meeting.Agenda, transcriptText string) (string, error)
}

// OpenAIConfig configures the OpenAI-backed feedback generator.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// OpenAIGenerator generates feedback via an OpenAI-compatible chat
// completions endpoint.
type OpenAIGenerator struct {
	client openaigo.Client
	model  string

	temperature float64
	maxTokens   int64
}

// NewOpenAIGenerator creates a generator from config, applying defaults for
// any unset field. The API key is required.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", dverrors.ErrValidation)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxCompletionTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	client := openaigo.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &OpenAIGenerator{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate asks the model to assess how well the transcript covered the
// agenda. Returns the model's text verbatim.
func (g *OpenAIGenerator) Generate(ctx context.Context, agenda meeting.Agenda, transcriptText string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(g.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.SystemMessage(feedbackSystemPrompt),
			openaigo.UserMessage(buildFeedbackPrompt(agenda, transcriptText)),
		},
		Temperature:         param.NewOpt(g.temperature),
		MaxCompletionTokens: param.NewOpt(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", dverrors.ErrUnavailable)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: model returned empty content", dverrors.ErrUnavailable)
	}

	return content, nil
}

// UnavailableGenerator is a FeedbackGenerator for deployments without a
// model configured. Every call fails with ErrUnavailable, so analyses carry
// stats plus a feedback error instead of feedback.
type UnavailableGenerator struct{}

func (UnavailableGenerator) Generate(context.Context, meeting.Agenda, string) (string, error) {
	return "", fmt.Errorf("%w: no feedback model configured", dverrors.ErrUnavailable)
}

// buildFeedbackPrompt assembles the two-part user prompt: the agenda first,
// then the flattened transcript.
func buildFeedbackPrompt(agenda meeting.Agenda, transcriptText string) string {
	var b strings.Builder

	b.WriteString("## Agenda\n")
	if agenda.Title != "" {
		b.WriteString("Title: ")
		b.WriteString(agenda.Title)
		b.WriteString("\n")
	}
	if agenda.Description != "" {
		b.WriteString(agenda.Description)
		b.WriteString("\n")
	}
	if agenda.Title == "" && agenda.Description == "" {
		b.WriteString("(no agenda provided)\n")
	}

	b.WriteString("\n## Transcript\n")
	b.WriteString(transcriptText)

	return b.String()
}
