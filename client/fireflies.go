// Package client provides the Fireflies.ai API client used to fetch Google
// Meet transcripts. It handles GraphQL request plumbing, error mapping, and
// meeting-code resolution.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dverrors "github.com/otherjamesbrown/diviz/pkg/errors"
	"github.com/otherjamesbrown/diviz/pkg/logging"
	"github.com/otherjamesbrown/diviz/pkg/meeting"
)

// Default client settings.
const (
	DefaultFirefliesEndpoint = "https://api.fireflies.ai/graphql"
	DefaultRequestTimeout    = 30 * time.Second
	DefaultLookbackDays      = 30
	DefaultListLimit         = 50
)

const transcriptsQuery = `
query Transcripts($mine: Boolean, $limit: Int, $skip: Int, $fromDate: DateTime, $toDate: DateTime) {
  transcripts(mine: $mine, limit: $limit, skip: $skip, fromDate: $fromDate, toDate: $toDate) {
    id
    title
    date
    meeting_link
  }
}
`

const transcriptQuery = `
query Transcript($id: String!) {
  transcript(id: $id) {
    id
    title
    organizer_email
    meeting_link
    date
    duration
    speakers { id name }
    sentences {
      index
      speaker_name
      text
      raw_text
      start_time
      end_time
    }
  }
}
`

// FirefliesOptions configures the FirefliesClient.
type FirefliesOptions struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// LookbackDays is how far back to search when resolving a meeting code.
	LookbackDays int

	// HTTPClient overrides the HTTP client (for tests).
	HTTPClient *http.Client
}

// FirefliesClient fetches meeting transcripts from the Fireflies.ai GraphQL
// API.
type FirefliesClient struct {
	apiKey       string
	endpoint     string
	lookbackDays int
	httpClient   *http.Client
	logger       logging.Logger
}

// TranscriptSummary is one entry from the transcript listing, used to match
// a meeting code against meeting links.
type TranscriptSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        json.Number `json:"date"`
	MeetingLink string      `json:"meeting_link"`
}

// NewFirefliesClient creates a Fireflies client. The API key is required;
// unset options fall back to defaults.
func NewFirefliesClient(apiKey string, opts *FirefliesOptions, logger logging.Logger) (*FirefliesClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Fireflies API key is required", dverrors.ErrValidation)
	}
	if opts == nil {
		opts = &FirefliesOptions{}
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultFirefliesEndpoint
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.LookbackDays == 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &FirefliesClient{
		apiKey:       apiKey,
		endpoint:     opts.Endpoint,
		lookbackDays: opts.LookbackDays,
		httpClient:   opts.HTTPClient,
		logger:       logger,
	}, nil
}

// graphqlError is one entry of a GraphQL errors array.
type graphqlError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func (e graphqlError) errorCode() string {
	if e.Code != "" {
		return e.Code
	}
	if e.Extensions.Code != "" {
		return e.Extensions.Code
	}
	return "unknown_error"
}

// graphqlRequest posts a query and decodes the "data" object into out.
func (c *FirefliesClient) graphqlRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: Fireflies API request: %v", dverrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read Fireflies API response: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: invalid JSON from Fireflies API (status %d)", dverrors.ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || len(envelope.Errors) > 0 {
		if len(envelope.Errors) == 0 {
			return fmt.Errorf("%w: Fireflies API returned status %d", dverrors.ErrUnavailable, resp.StatusCode)
		}
		first := envelope.Errors[0]
		return fmt.Errorf("%w: Fireflies API error [%s]: %s", dverrors.ErrUnavailable, first.errorCode(), first.Message)
	}

	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode Fireflies API data: %w", err)
		}
	}

	return nil
}

// ListRecentTranscripts lists the caller's transcripts from the lookback
// window, newest first as returned by the API.
func (c *FirefliesClient) ListRecentTranscripts(ctx context.Context) ([]TranscriptSummary, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -c.lookbackDays)

	var data struct {
		Transcripts []TranscriptSummary `json:"transcripts"`
	}
	err := c.graphqlRequest(ctx, transcriptsQuery, map[string]any{
		"mine":     true,
		"limit":    DefaultListLimit,
		"skip":     0,
		"fromDate": from.Format(time.RFC3339),
		"toDate":   now.Format(time.RFC3339),
	}, &data)
	if err != nil {
		return nil, err
	}

	return data.Transcripts, nil
}

// GetTranscript fetches the full transcript by Fireflies transcript ID.
func (c *FirefliesClient) GetTranscript(ctx context.Context, transcriptID string) (*meeting.Transcript, error) {
	var data struct {
		Transcript *firefliesTranscript `json:"transcript"`
	}
	err := c.graphqlRequest(ctx, transcriptQuery, map[string]any{"id": transcriptID}, &data)
	if err != nil {
		return nil, err
	}
	if data.Transcript == nil {
		return nil, fmt.Errorf("%w: transcript %q", dverrors.ErrNotFound, transcriptID)
	}

	return data.Transcript.toTranscript(), nil
}

// FetchTranscript resolves a Google Meet meeting code to the matching
// transcript: it scans recent transcripts for a meeting link containing the
// code, then fetches the full transcript by ID.
func (c *FirefliesClient) FetchTranscript(ctx context.Context, meetingCode string) (*meeting.Transcript, error) {
	summaries, err := c.ListRecentTranscripts(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.ToLower(strings.TrimSpace(meetingCode))
	for _, summary := range summaries {
		link := strings.ToLower(strings.TrimSpace(summary.MeetingLink))
		if link == "" || !strings.Contains(link, code) {
			continue
		}

		c.logger.Debug("resolved meeting code",
			logging.F("meeting_code", meetingCode),
			logging.F("transcript_id", summary.ID))
		return c.GetTranscript(ctx, summary.ID)
	}

	return nil, fmt.Errorf("%w: no transcript matches meeting code %q", dverrors.ErrNotFound, meetingCode)
}

// firefliesTranscript is the wire shape of the transcript detail query.
// Speaker IDs arrive as numbers and dates as epoch milliseconds; both are
// normalized to strings.
type firefliesTranscript struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	OrganizerEmail string      `json:"organizer_email"`
	MeetingLink    string      `json:"meeting_link"`
	Date           json.Number `json:"date"`
	Duration       float64     `json:"duration"`
	Speakers       []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"name"`
	} `json:"speakers"`
	Sentences []meeting.Sentence `json:"sentences"`
}

func (t *firefliesTranscript) toTranscript() *meeting.Transcript {
	speakers := make([]meeting.Speaker, 0, len(t.Speakers))
	for _, s := range t.Speakers {
		speakers = append(speakers, meeting.Speaker{ID: s.ID.String(), Name: s.Name})
	}

	return &meeting.Transcript{
		TranscriptID:   t.ID,
		Title:          t.Title,
		OrganizerEmail: t.OrganizerEmail,
		MeetingLink:    t.MeetingLink,
		Date:           t.Date.String(),
		Duration:       t.Duration,
		Speakers:       speakers,
		Sentences:      t.Sentences,
	}
}
