package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/analysis"
)

func TestLoadTranscriptFileVTT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.vtt")

	content := `WEBVTT

1 "Alice Smith" (123)
00:00:00.000 --> 00:00:03.000
Hello everyone.

2 "Bob Jones" (456)
00:00:03.000 --> 00:00:05.000
Hi Alice.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	transcript, err := loadTranscriptFile(path)
	require.NoError(t, err)
	require.Len(t, transcript.Sentences, 2)
	assert.Equal(t, "Alice Smith", transcript.Sentences[0].SpeakerName)
	assert.Equal(t, "Hello everyone.", transcript.Sentences[0].Text)
}

func TestLoadTranscriptFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.json")

	content := `{
		"title": "Standup",
		"sentences": [
			{"index": 0, "speaker_name": "Alice", "text": "Hi", "start_time": 0, "end_time": 2}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	transcript, err := loadTranscriptFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Standup", transcript.Title)
	require.Len(t, transcript.Sentences, 1)
	assert.Equal(t, "Alice", transcript.Sentences[0].SpeakerName)
}

func TestLoadTranscriptFileUnsupportedExtension(t *testing.T) {
	_, err := loadTranscriptFile("meeting.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transcript format")
}

func TestLoadTranscriptFileMissing(t *testing.T) {
	_, err := loadTranscriptFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadAgendaFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agenda.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "From File", "description": "1. Review"}`), 0o644))

	analyzeAgendaFile = path
	analyzeTitle = "From Flag"
	analyzeDescription = ""
	t.Cleanup(func() {
		analyzeAgendaFile = ""
		analyzeTitle = ""
	})

	agenda, err := loadAgenda()
	require.NoError(t, err)
	assert.Equal(t, "From Flag", agenda.Title)
	assert.Equal(t, "1. Review", agenda.Description)
}

func TestPrintAnalysisText(t *testing.T) {
	result := &analysis.Analysis{
		Stats: analysis.Stats{
			SpeakerMinutes:       map[string]float64{"Alice": 2.5, "Bob": 1.0},
			TotalDurationMinutes: 3.5,
		},
		Feedback: "Good coverage of the agenda.",
	}

	var buf bytes.Buffer
	printAnalysisText(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Good coverage of the agenda.")
	assert.NotContains(t, out, "Warning")

	// Longest speaker first.
	assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Bob"))
}

func TestPrintAnalysisTextWithFeedbackError(t *testing.T) {
	result := &analysis.Analysis{
		Stats: analysis.Stats{
			SpeakerMinutes: map[string]float64{},
		},
		Feedback:      "Feedback generation failed: model unavailable",
		FeedbackError: "model unavailable",
	}

	var buf bytes.Buffer
	printAnalysisText(&buf, result)

	assert.Contains(t, buf.String(), "Warning: feedback generation failed: model unavailable")
}

func TestNewLoggerFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Log.JSON = true

	logger := newLogger(cfg)
	require.NotNil(t, logger)

	// Unknown levels fall back to info rather than failing.
	cfg.Log.Level = "nonsense"
	require.NotNil(t, newLogger(cfg))
}

func TestLoadConfigWithOverrides(t *testing.T) {
	t.Setenv("DIVIZ_CONFIG_DIR", t.TempDir())

	cfg, err := loadConfigWithOverrides("http://localhost:9999", "user-42", "json")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.ServerURL)
	assert.Equal(t, "user-42", cfg.UserID)
	assert.Equal(t, "json", string(cfg.OutputFormat))
}

func TestLoadConfigWithOverridesInvalidFormat(t *testing.T) {
	t.Setenv("DIVIZ_CONFIG_DIR", t.TempDir())

	_, err := loadConfigWithOverrides("", "", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
