package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/pkg/render"
	"github.com/recaphq/recap-cli/workspace"
)

// EmailCommandDeps holds the dependencies for the email command.
type EmailCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultEmailDeps returns the default dependencies for production use.
func DefaultEmailDeps() *EmailCommandDeps {
	return &EmailCommandDeps{
		LoadConfig: config.LoadConfig,
		InitClient: connectFromConfig,
	}
}

// Email command flags.
var (
	emailTo     string
	emailNoHTML bool
)

// NewEmailCommand creates the email command.
func NewEmailCommand(deps *EmailCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEmailDeps()
	}

	cmd := &cobra.Command{
		Use:   "email <meeting-id>",
		Short: "Email a meeting summary",
		Long: `Email a stored meeting summary to one or more recipients.

Recipients are comma-separated; surrounding whitespace is trimmed and empty
entries are dropped. The subject is the meeting title, or "Meeting Summary"
when the meeting has none. The summary is sent as plain text plus an HTML
rendering of its Markdown unless --no-html is set.

Examples:
  recap email 64f1c0a2e1 --to alice@example.com
  recap email 64f1c0a2e1 --to "alice@example.com, bob@example.com"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmail(cmd.Context(), deps, args[0])
		},
	}

	cmd.Flags().StringVar(&emailTo, "to", "", "Comma-separated recipient addresses (required)")
	cmd.Flags().BoolVar(&emailNoHTML, "no-html", false, "Send plain text only")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runEmail(ctx context.Context, deps *EmailCommandDeps, id string) error {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	api, err := deps.InitClient(cfg)
	if err != nil {
		return err
	}
	opts := &workspace.SessionOptions{
		Notifier: &consoleNotifier{},
		Logger:   newLogger(cfg),
	}
	if !emailNoHTML {
		opts.RenderHTML = render.SummaryHTML
	}

	session := workspace.NewSession(api, opts)
	if err := session.Load(ctx, id); err != nil {
		return fmt.Errorf("loading meeting %s: %w", id, err)
	}
	session.SetRecipients(emailTo)
	return session.SendEmail(ctx)
}
