package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/analysis"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// Analyze command flags
var (
	analyzeTitle       string
	analyzeDescription string
	analyzeAgendaFile  string
	analyzeOutput      string
)

// NewAnalyzeCommand creates the 'analyze' command, which runs the analysis
// pipeline against a local transcript file without a running server.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <transcript-file>",
		Short: "Analyze a local meeting transcript",
		Long: `Analyze a local meeting transcript against an agenda.

Computes per-speaker speaking time from the transcript timestamps and asks
the configured model how well the discussion covered the agenda.

Supported transcript formats:
  - Fireflies transcript JSON (.json)
  - WebVTT (.vtt)
  - Plain text "mm:ss : Speaker : text" lines (.txt)

The agenda comes from --title/--description flags, or from a JSON file via
--agenda ({"title": ..., "description": ...}). Feedback generation requires
OPENAI_API_KEY; without it only participation stats are produced.

Examples:
  # Analyze a Fireflies export against an inline agenda
  diviz analyze ./standup.json --title "Standup" --description "1. Updates 2. Blockers"

  # Analyze a WebVTT transcript with an agenda file
  diviz analyze ./recording.vtt --agenda ./agenda.json

  # Emit the analysis as JSON
  diviz analyze ./standup.json --title "Standup" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&analyzeTitle, "title", "", "Agenda title")
	cmd.Flags().StringVar(&analyzeDescription, "description", "", "Agenda description")
	cmd.Flags().StringVar(&analyzeAgendaFile, "agenda", "", "Path to a JSON agenda file")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func runAnalyze(cmd *cobra.Command, transcriptPath string) error {
	cfg, err := loadConfigWithOverrides("", "", analyzeOutput)
	if err != nil {
		return err
	}

	agenda, err := loadAgenda()
	if err != nil {
		return err
	}

	transcript, err := loadTranscriptFile(transcriptPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(generator, logger)
	result := analyzer.Analyze(cmd.Context(), agenda, transcript)

	out := cmd.OutOrStdout()
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		return outputJSON(out, result)
	case config.OutputFormatYAML:
		return outputYAML(out, result)
	default:
		printAnalysisText(out, result)
		return nil
	}
}

// loadAgenda builds the agenda from flags or an agenda file. Flags win over
// the file for fields set in both.
func loadAgenda() (meeting.Agenda, error) {
	agenda := meeting.Agenda{}

	if analyzeAgendaFile != "" {
		data, err := os.ReadFile(analyzeAgendaFile)
		if err != nil {
			return agenda, fmt.Errorf("reading agenda file: %w", err)
		}
		if err := json.Unmarshal(data, &agenda); err != nil {
			return agenda, fmt.Errorf("parsing agenda file: %w", err)
		}
	}

	if analyzeTitle != "" {
		agenda.Title = analyzeTitle
	}
	if analyzeDescription != "" {
		agenda.Description = analyzeDescription
	}

	return agenda, nil
}

// loadTranscriptFile parses a transcript file, picking the parser by
// extension.
func loadTranscriptFile(path string) (*meeting.Transcript, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading transcript: %w", err)
		}
		var transcript meeting.Transcript
		if err := json.Unmarshal(data, &transcript); err != nil {
			return nil, fmt.Errorf("parsing transcript JSON: %w", err)
		}
		return &transcript, nil
	case ".vtt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening transcript: %w", err)
		}
		defer f.Close()
		return meeting.ParseVTT(f)
	case ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening transcript: %w", err)
		}
		defer f.Close()
		return meeting.ParseTXT(f)
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s (expected .json, .vtt, or .txt)", path)
	}
}

// buildGenerator creates the feedback generator from config. Without an API
// key it falls back to a generator that always reports feedback unavailable,
// so stats-only analysis still works.
func buildGenerator(cfg *config.Config) (analysis.FeedbackGenerator, error) {
	if cfg.OpenAI.APIKey == "" {
		return analysis.UnavailableGenerator{}, nil
	}

	return analysis.NewOpenAIGenerator(analysis.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	})
}
