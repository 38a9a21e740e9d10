// Package main provides the recap CLI entry point.
// recap is the command-line interface for the Recap meeting summarization service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/cmd"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/pkg/buildinfo"
)

// Global flags and state.
var (
	serverURL    string
	timeout      time.Duration
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration, after flag overrides.
	cfg *config.CLIConfig
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Recap CLI - Meeting transcript summarization",
	Long: `recap is the command-line interface for the Recap summarization service.

Recap turns raw meeting transcripts into concise summaries, stores them for
later retrieval, and emails them to attendees.

COMMON WORKFLOWS:
  Summarize:   recap generate --title "Q3 Planning" --file meeting.vtt
  Live notes:  recap generate --file live.vtt --watch
  Review:      recap meeting list  →  recap meeting show <id>
  Refine:      recap edit <id> --summary "$(cat revised.md)"
  Distribute:  recap email <id> --to "alice@example.com, bob@example.com"
  Find:        recap search "budget" --scope title  |  recap search -i

All commands support --output json for machine-readable output.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		// Load configuration.
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if timeout != 0 {
			cfg.Timeout = timeout
		}
		if outputFormat != "" {
			cfg.OutputFormat = config.OutputFormat(outputFormat)
		}
		if debug {
			cfg.Debug = true
		}

		return cfg.Validate()
	},
}

// Version command flags.
var versionOutputJSON bool

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of the recap CLI.

Examples:
  recap version
  recap version --json`,
	RunE: func(c *cobra.Command, args []string) error {
		info := buildinfo.Get("recap-cli")
		if versionOutputJSON {
			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		out := c.OutOrStdout()
		fmt.Fprintf(out, "recap version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:  %s\n", info.Commit)
		fmt.Fprintf(out, "  built:   %s\n", info.BuildTime)
		fmt.Fprintf(out, "  go:      %s\n", info.GoVersion)
		return nil
	},
}

// statusCmd checks connectivity to the backend.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the Recap backend",
	Long: `Check that the Recap backend is reachable by listing stored meetings.

Examples:
  recap status`,
	RunE: func(c *cobra.Command, args []string) error {
		api := client.NewClient(cfg.ServerURL, &client.Options{Timeout: cfg.Timeout})
		start := time.Now()
		meetings, err := api.ListMeetings(c.Context())
		if err != nil {
			return fmt.Errorf("backend %s unreachable: %w", cfg.ServerURL, err)
		}
		fmt.Printf("Backend %s is up (%d meetings, %s)\n",
			cfg.ServerURL, len(meetings), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// loadedConfig hands commands the configuration resolved by the root
// command, so flag overrides apply to every subcommand.
func loadedConfig() (*config.CLIConfig, error) {
	if cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Backend server URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: text, json, or yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	versionCmd.Flags().BoolVar(&versionOutputJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)

	generateDeps := cmd.DefaultGenerateDeps()
	generateDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewGenerateCommand(generateDeps))

	meetingDeps := cmd.DefaultMeetingDeps()
	meetingDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewMeetingCommand(meetingDeps))

	editDeps := cmd.DefaultEditDeps()
	editDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewEditCommand(editDeps))

	emailDeps := cmd.DefaultEmailDeps()
	emailDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewEmailCommand(emailDeps))

	searchDeps := cmd.DefaultSearchDeps()
	searchDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewSearchCommand(searchDeps))

	configDeps := cmd.DefaultConfigDeps()
	configDeps.LoadConfig = loadedConfig
	rootCmd.AddCommand(cmd.NewConfigCommand(configDeps))
}

func main() {
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
