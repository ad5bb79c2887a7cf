package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

func TestNewOpenAIGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	assert.True(t, dverrors.IsValidation(err))
}

func TestNewOpenAIGenerator_AppliesDefaults(t *testing.T) {
	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, gen.model)
	assert.Equal(t, defaultTemperature, gen.temperature)
	assert.Equal(t, int64(defaultMaxCompletionTokens), gen.maxTokens)
}

func TestFeedbackSystemPrompt_RequestsBothParts(t *testing.T) {
	// The instruction asks for agenda coverage AND a per-participant
	// contribution summary tying participants to agenda items.
	assert.Contains(t, feedbackSystemPrompt, "agenda coverage")
	assert.Contains(t, feedbackSystemPrompt, "per-participant contribution summary")
	assert.Contains(t, feedbackSystemPrompt, "which agenda items they engaged with")
}

func TestBuildFeedbackPrompt(t *testing.T) {
	agenda := meeting.Agenda{Title: "Sprint Planning", Description: "1. Velocity\n2. Blockers"}
	prompt := buildFeedbackPrompt(agenda, "Alice: Hi\nBob: Hello")

	assert.Contains(t, prompt, "## Agenda")
	assert.Contains(t, prompt, "Title: Sprint Planning")
	assert.Contains(t, prompt, "1. Velocity")
	assert.Contains(t, prompt, "## Transcript")
	assert.Contains(t, prompt, "Alice: Hi")

	// Agenda section comes before the transcript section
	assert.Less(t, strings.Index(prompt, "## Agenda"), strings.Index(prompt, "## Transcript"))
}

func TestBuildFeedbackPrompt_EmptyAgenda(t *testing.T) {
	prompt := buildFeedbackPrompt(meeting.Agenda{}, "Alice: Hi")
	assert.Contains(t, prompt, "(no agenda provided)")
}
