package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/workspace"
)

// EditCommandDeps holds the dependencies for the edit command.
type EditCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultEditDeps returns the default dependencies for production use.
func DefaultEditDeps() *EditCommandDeps {
	return &EditCommandDeps{
		LoadConfig: config.LoadConfig,
		InitClient: connectFromConfig,
	}
}

// Edit command flags.
var (
	editTitle        string
	editInstructions string
	editSummary      string
)

// NewEditCommand creates the edit command.
func NewEditCommand(deps *EditCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultEditDeps()
	}

	cmd := &cobra.Command{
		Use:   "edit <meeting-id>",
		Short: "Edit a stored meeting's title, instructions, or summary",
		Long: `Edit one or more fields of a stored meeting and save the result.

Only the flags you pass change; other fields keep their stored values. The
saved meeting shown afterwards is the backend's response, including any
normalization it applied.

Examples:
  recap edit 64f1c0a2e1 --title "Q3 Planning (final)"
  recap edit 64f1c0a2e1 --summary "$(cat revised.md)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), deps, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&editTitle, "title", "", "New title")
	cmd.Flags().StringVar(&editInstructions, "instructions", "", "New instructions")
	cmd.Flags().StringVar(&editSummary, "summary", "", "New summary text")

	return cmd
}

func runEdit(ctx context.Context, deps *EditCommandDeps, id string, cmd *cobra.Command) error {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}
	if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("instructions") && !cmd.Flags().Changed("summary") {
		return fmt.Errorf("nothing to edit: pass --title, --instructions, or --summary")
	}

	api, err := deps.InitClient(cfg)
	if err != nil {
		return err
	}
	session := workspace.NewSession(api, &workspace.SessionOptions{
		Notifier: &consoleNotifier{},
		Logger:   newLogger(cfg),
	})
	if err := session.Load(ctx, id); err != nil {
		return fmt.Errorf("loading meeting %s: %w", id, err)
	}
	if err := session.BeginEdit(); err != nil {
		return err
	}
	if cmd.Flags().Changed("title") {
		if err := session.SetTitle(editTitle); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("instructions") {
		if err := session.SetInstructions(editInstructions); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("summary") {
		if err := session.SetSummary(editSummary); err != nil {
			return err
		}
	}
	if err := session.Save(ctx); err != nil {
		return err
	}

	return outputMeeting(cfg, session.Current())
}
