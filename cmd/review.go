package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/analysis"
)

// Review command flags
var (
	reviewTitle       string
	reviewDescription string
	reviewServerURL   string
	reviewUserID      string
	reviewOutput      string
)

// reviewResult mirrors the server's review response.
type reviewResult struct {
	Status        string         `json:"status"`
	MeetingCode   string         `json:"meeting_code"`
	Stats         analysis.Stats `json:"stats"`
	Feedback      string         `json:"feedback"`
	FeedbackError string         `json:"feedback_error"`
	Cached        bool           `json:"cached"`
}

// NewReviewCommand creates the 'review' command, which asks a running diviz
// server to analyze a meeting by its Google Meet code.
func NewReviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <meet-code>",
		Short: "Review a meeting by its Google Meet code",
		Long: `Review a meeting by its Google Meet code.

The server resolves the meeting code to a Fireflies transcript, computes
per-speaker participation stats, and generates agenda coverage feedback.
Results are cached per user: repeat reviews of the same meeting return
instantly without re-analysis.

Requires a running server (see 'diviz serve') plus server_url and user_id
configuration, or the --server and --user flags.

Examples:
  diviz review abc-defg-hij --title "Sprint Planning" --description "1. Velocity 2. Scope"
  diviz review abc-defg-hij --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&reviewTitle, "title", "", "Agenda title")
	cmd.Flags().StringVar(&reviewDescription, "description", "", "Agenda description")
	cmd.Flags().StringVar(&reviewServerURL, "server", "", "diviz server base URL")
	cmd.Flags().StringVar(&reviewUserID, "user", "", "User ID for the request")
	cmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func runReview(cmd *cobra.Command, meetCode string) error {
	cfg, err := loadConfigWithOverrides(reviewServerURL, reviewUserID, reviewOutput)
	if err != nil {
		return err
	}

	query := url.Values{}
	if reviewTitle != "" {
		query.Set("title", reviewTitle)
	}
	if reviewDescription != "" {
		query.Set("description", reviewDescription)
	}

	path := "/api/review/" + url.PathEscape(meetCode)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result reviewResult
	if err := serverRequest(cmd.Context(), cfg, "GET", path, nil, &result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		return outputJSON(out, result)
	case config.OutputFormatYAML:
		return outputYAML(out, result)
	default:
		fmt.Fprintf(out, "Meeting: %s", result.MeetingCode)
		if result.Cached {
			fmt.Fprint(out, " (cached)")
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out)
		printAnalysisText(out, &analysis.Analysis{
			Stats:         result.Stats,
			Feedback:      result.Feedback,
			FeedbackError: result.FeedbackError,
		})
		return nil
	}
}
