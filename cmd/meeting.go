package cmd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/store"
)

// Meeting command flags
var (
	meetingServerURL   string
	meetingUserID      string
	meetingOutput      string
	meetingTitle       string
	meetingDescription string
	meetingStart       string
	meetingEnd         string
)

// NewMeetingCommand creates the 'meeting' command group for managing stored
// meetings on a running diviz server.
func NewMeetingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Manage stored meetings",
		Long: `Manage the meetings stored for your user on a diviz server.

Meetings are created explicitly (to register an agenda ahead of time) or
implicitly by 'diviz review'. Each meeting keeps its agenda, transcript,
and cached analysis.

Examples:
  diviz meeting list
  diviz meeting create abc-defg-hij --title "Sprint Planning"
  diviz meeting get abc-defg-hij
  diviz meeting delete abc-defg-hij`,
	}

	cmd.PersistentFlags().StringVar(&meetingServerURL, "server", "", "diviz server base URL")
	cmd.PersistentFlags().StringVar(&meetingUserID, "user", "", "User ID for the request")
	cmd.PersistentFlags().StringVarP(&meetingOutput, "output", "o", "", "Output format: text, json, yaml")

	cmd.AddCommand(newMeetingListCommand())
	cmd.AddCommand(newMeetingCreateCommand())
	cmd.AddCommand(newMeetingGetCommand())
	cmd.AddCommand(newMeetingDeleteCommand())

	return cmd
}

func newMeetingListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your stored meetings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithOverrides(meetingServerURL, meetingUserID, meetingOutput)
			if err != nil {
				return err
			}

			var resp struct {
				Meetings []store.MeetingRecord `json:"meetings"`
			}
			if err := serverRequest(cmd.Context(), cfg, "GET", "/api/meetings", nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch cfg.OutputFormat {
			case config.OutputFormatJSON:
				return outputJSON(out, resp)
			case config.OutputFormatYAML:
				return outputYAML(out, resp)
			}

			if len(resp.Meetings) == 0 {
				fmt.Fprintln(out, "No meetings stored.")
				return nil
			}

			fmt.Fprintf(out, "%-16s %-30s %-10s %s\n", "CODE", "TITLE", "ANALYZED", "UPDATED")
			for _, m := range resp.Meetings {
				analyzed := "no"
				if m.Analysis != nil {
					analyzed = "yes"
				}
				fmt.Fprintf(out, "%-16s %-30s %-10s %s\n",
					m.MeetingCode,
					valueOrDefault(m.Agenda.Title, "-"),
					analyzed,
					m.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newMeetingCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <meet-code>",
		Short: "Register a meeting with its agenda",
		Long: `Register a meeting ahead of its review.

Start and end times, when given, are used to derive the meeting duration.

Examples:
  diviz meeting create abc-defg-hij --title "Sprint Planning" --description "1. Velocity"
  diviz meeting create abc-defg-hij --start 2026-08-30T10:00:00Z --end 2026-08-30T10:45:00Z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithOverrides(meetingServerURL, meetingUserID, meetingOutput)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"meeting_code": args[0],
				"title":        meetingTitle,
				"description":  meetingDescription,
			}
			for flag, value := range map[string]string{"start_time": meetingStart, "end_time": meetingEnd} {
				if value == "" {
					continue
				}
				ts, err := time.Parse(time.RFC3339, value)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", flag, err)
				}
				payload[flag] = ts
			}

			var record store.MeetingRecord
			if err := serverRequestJSON(cmd.Context(), cfg, "POST", "/api/meetings", payload, &record); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch cfg.OutputFormat {
			case config.OutputFormatJSON:
				return outputJSON(out, record)
			case config.OutputFormatYAML:
				return outputYAML(out, record)
			}

			fmt.Fprintf(out, "Created meeting %s (id %s)\n", record.MeetingCode, record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&meetingTitle, "title", "", "Agenda title")
	cmd.Flags().StringVar(&meetingDescription, "description", "", "Agenda description")
	cmd.Flags().StringVar(&meetingStart, "start", "", "Meeting start time (RFC 3339)")
	cmd.Flags().StringVar(&meetingEnd, "end", "", "Meeting end time (RFC 3339)")

	return cmd
}

func newMeetingGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <meet-code>",
		Short: "Show one stored meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithOverrides(meetingServerURL, meetingUserID, meetingOutput)
			if err != nil {
				return err
			}

			var record store.MeetingRecord
			path := "/api/meetings/" + url.PathEscape(args[0])
			if err := serverRequest(cmd.Context(), cfg, "GET", path, nil, &record); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch cfg.OutputFormat {
			case config.OutputFormatYAML:
				return outputYAML(out, record)
			default:
				// Full records are structured; default to JSON.
				return outputJSON(out, record)
			}
		},
	}
}

func newMeetingDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <meet-code>",
		Short: "Delete a stored meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithOverrides(meetingServerURL, meetingUserID, meetingOutput)
			if err != nil {
				return err
			}

			path := "/api/meetings/" + url.PathEscape(args[0])
			if err := serverRequest(cmd.Context(), cfg, "DELETE", path, nil, nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meeting %s\n", args[0])
			return nil
		},
	}
}
