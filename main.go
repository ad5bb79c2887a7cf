// Package main provides the diviz CLI entry point.
// diviz analyzes meeting transcripts against their agendas.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/diviz/cmd"
	"github.com/otherjamesbrown/diviz/config"
	"github.com/otherjamesbrown/diviz/pkg/buildinfo"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "diviz",
	Short: "Meeting agenda and participation analysis",
	Long: `diviz analyzes meeting transcripts against their agendas.

It computes per-speaker speaking time from transcript timestamps and uses an
OpenAI-compatible model to assess how well the discussion covered the planned
agenda. Transcripts come from Fireflies.ai (looked up by Google Meet code) or
from local files (.json, .vtt, .txt).

COMMON WORKFLOWS:
  Run the server:     diviz serve
  Review a meeting:   diviz review abc-defg-hij --title "Sprint Planning"
  Local analysis:     diviz analyze ./standup.vtt --agenda ./agenda.json
  Manage meetings:    diviz meeting list  |  diviz meeting delete abc-defg-hij

DISCOVERY:
  diviz <command> --help    Subcommands, flags, and examples for any command
  diviz config show         Current configuration and config file location`,
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build time of the diviz CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Get("diviz")

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "diviz version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
		return nil
	},
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify the diviz configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		configPath, _ := config.ConfigPath()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintf(out, "  Config file:    %s\n", configPath)
		fmt.Fprintf(out, "  Listen address: %s\n", cfg.ListenAddress)
		fmt.Fprintf(out, "  Server URL:     %s\n", valueOrDefault(cfg.ServerURL, "(not set)"))
		fmt.Fprintf(out, "  User ID:        %s\n", valueOrDefault(cfg.UserID, "(not set)"))
		fmt.Fprintf(out, "  Output format:  %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "  Redis address:  %s\n", valueOrDefault(cfg.RedisAddr, "(in-memory store)"))
		fmt.Fprintf(out, "  OpenAI model:   %s\n", cfg.OpenAI.Model)
		fmt.Fprintf(out, "  OpenAI key:     %s\n", maskSecret(cfg.OpenAI.APIKey))
		fmt.Fprintf(out, "  Fireflies key:  %s\n", maskSecret(cfg.Fireflies.APIKey))
		fmt.Fprintf(out, "  Log level:      %s\n", cfg.Log.Level)

		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		out := cmd.OutOrStdout()
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(out, "Configuration file already exists: %s\n", configPath)
			fmt.Fprintln(out, "Use 'diviz config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
		fmt.Fprintln(out, "\nDefault settings:")
		fmt.Fprintf(out, "  Listen address: %s\n", defaultCfg.ListenAddress)
		fmt.Fprintf(out, "  Output format:  %s\n", defaultCfg.OutputFormat)

		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  listen_address  - HTTP server listen address (host:port)
  server_url      - diviz server base URL for client commands
  user_id         - User ID sent with client requests
  output_format   - Default output format (text, json, yaml)
  redis_addr      - Redis address for meeting storage (empty = in-memory)
  openai_model    - Model used for feedback generation
  log_level       - Log level (debug, info, warn, error)

API keys are not stored in the config file; set OPENAI_API_KEY and
FIREFLIES_API_KEY in the environment instead.

Examples:
  diviz config set server_url http://localhost:8080
  diviz config set user_id alice@example.com
  diviz config set output_format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			currentCfg = config.DefaultConfig()
		}

		switch key {
		case "listen_address":
			currentCfg.ListenAddress = value
		case "server_url":
			currentCfg.ServerURL = value
		case "user_id":
			currentCfg.UserID = value
		case "output_format":
			format := config.OutputFormat(value)
			if !format.IsValid() {
				return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", value)
			}
			currentCfg.OutputFormat = format
		case "redis_addr":
			currentCfg.RedisAddr = value
		case "openai_model":
			currentCfg.OpenAI.Model = value
		case "log_level":
			currentCfg.Log.Level = value
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for diviz.

To load completions:

Bash:
  $ source <(diviz completion bash)

Zsh:
  $ diviz completion zsh > "${fpath[1]}/_diviz"

Fish:
  $ diviz completion fish | source

PowerShell:
  PS> diviz completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// maskSecret hides all but the first few characters of a secret.
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 6 {
		return "******"
	}
	return secret[:4] + "..." + "******"
}

func init() {
	rootCmd.AddCommand(cmd.NewServeCommand())
	rootCmd.AddCommand(cmd.NewReviewCommand())
	rootCmd.AddCommand(cmd.NewAnalyzeCommand())
	rootCmd.AddCommand(cmd.NewMeetingCommand())

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	// Pick up keys from a local .env for development.
	_ = godotenv.Load()

	// Set up signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
