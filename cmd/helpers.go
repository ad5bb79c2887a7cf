// Package cmd implements the diviz CLI subcommands.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/analysis"
	"github.com/otherjamesbrown/diviz/pkg/logging"
)

// newLogger creates the logger for a command from the loaded configuration.
// Logs go to stderr so they never mix with command output.
func newLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.Log.Level),
		ServiceName: "diviz",
		JSONFormat:  cfg.Log.JSON,
		Output:      os.Stderr,
	})
}

// outputJSON outputs data as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML outputs data as YAML.
func outputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// printAnalysisText renders an analysis in human-readable form: a speaking
// time table followed by the feedback text.
func printAnalysisText(w io.Writer, result *analysis.Analysis) {
	fmt.Fprintln(w, "Participation:")
	fmt.Fprintf(w, "  %-24s %s\n", "SPEAKER", "MINUTES")

	speakers := make([]string, 0, len(result.Stats.SpeakerMinutes))
	for speaker := range result.Stats.SpeakerMinutes {
		speakers = append(speakers, speaker)
	}
	// Longest speakers first, ties alphabetical
	sort.Slice(speakers, func(i, j int) bool {
		a, b := result.Stats.SpeakerMinutes[speakers[i]], result.Stats.SpeakerMinutes[speakers[j]]
		if a != b {
			return a > b
		}
		return speakers[i] < speakers[j]
	})

	for _, speaker := range speakers {
		fmt.Fprintf(w, "  %-24s %.2f\n", speaker, result.Stats.SpeakerMinutes[speaker])
	}
	fmt.Fprintf(w, "  %-24s %.2f\n", "TOTAL", result.Stats.TotalDurationMinutes)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Feedback:")
	for _, line := range strings.Split(result.Feedback, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if result.FeedbackError != "" {
		fmt.Fprintf(w, "\nWarning: feedback generation failed: %s\n", result.FeedbackError)
	}
}

// apiError is the error payload returned by the diviz server.
type apiError struct {
	Detail string `json:"detail"`
}

// serverRequest performs an authenticated request against a running diviz
// server and decodes the JSON response into out (unless out is nil or the
// response has no body).
func serverRequest(ctx context.Context, cfg *config.Config, method, path string, body io.Reader, out interface{}) error {
	if cfg.ServerURL == "" {
		return fmt.Errorf("no server configured: set server_url in the config file or DIVIZ_SERVER_URL")
	}
	if cfg.UserID == "" {
		return fmt.Errorf("no user ID configured: set user_id in the config file or DIVIZ_USER_ID")
	}

	url := strings.TrimSuffix(cfg.ServerURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-User-ID", cfg.UserID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := &http.Client{Timeout: 3 * time.Minute}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("server error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// serverRequestJSON marshals payload and performs a JSON request.
func serverRequestJSON(ctx context.Context, cfg *config.Config, method, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return serverRequest(ctx, cfg, method, path, bytes.NewReader(data), out)
}

// loadConfigWithOverrides loads the configuration and applies command-line
// flag overrides.
func loadConfigWithOverrides(serverURL, userID, outputFormat string) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if userID != "" {
		cfg.UserID = userID
	}
	if outputFormat != "" {
		format := config.OutputFormat(outputFormat)
		if !format.IsValid() {
			return nil, fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", outputFormat)
		}
		cfg.OutputFormat = format
	}

	return cfg, nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
