package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	rcerrors "github.com/recaphq/recap-cli/pkg/errors"
)

// MeetingCommandDeps holds the dependencies for meeting commands.
type MeetingCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultMeetingDeps returns the default dependencies for production use.
func DefaultMeetingDeps() *MeetingCommandDeps {
	return &MeetingCommandDeps{
		LoadConfig: config.LoadConfig,
		InitClient: connectFromConfig,
	}
}

func (deps *MeetingCommandDeps) resolve() (*config.CLIConfig, *client.Client, error) {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("loading configuration: %w", err)
		}
	}
	api, err := deps.InitClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, api, nil
}

// NewMeetingCommand creates the meeting command group.
func NewMeetingCommand(deps *MeetingCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMeetingDeps()
	}

	cmd := &cobra.Command{
		Use:     "meeting",
		Aliases: []string{"meetings"},
		Short:   "List, inspect, and delete stored meetings",
		Long: `Work with the stored meeting collection.

Subcommands:
  list     List stored meetings, newest first
  show     Show a single meeting with its summary
  delete   Delete a meeting

Examples:
  recap meeting list
  recap meeting show 64f1c0a2e1
  recap meeting delete 64f1c0a2e1`,
	}

	cmd.AddCommand(newMeetingListCommand(deps))
	cmd.AddCommand(newMeetingShowCommand(deps))
	cmd.AddCommand(newMeetingDeleteCommand(deps))

	return cmd
}

func newMeetingListCommand(deps *MeetingCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored meetings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingList(cmd.Context(), deps)
		},
	}
}

func newMeetingShowCommand(deps *MeetingCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show a single meeting with its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingShow(cmd.Context(), deps, args[0])
		},
	}
}

func newMeetingDeleteCommand(deps *MeetingCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <meeting-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a meeting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeetingDelete(cmd.Context(), deps, args[0])
		},
	}
}

func runMeetingList(ctx context.Context, deps *MeetingCommandDeps) error {
	cfg, api, err := deps.resolve()
	if err != nil {
		return err
	}

	meetings, err := api.ListMeetings(ctx)
	if err != nil {
		return fmt.Errorf("listing meetings: %w", err)
	}

	switch getOutputFormat(cfg) {
	case config.OutputFormatJSON:
		return outputJSON(meetings)
	case config.OutputFormatYAML:
		return outputYAML(meetings)
	default:
		return outputMeetingListText(meetings)
	}
}

func outputMeetingListText(meetings []client.Meeting) error {
	if len(meetings) == 0 {
		fmt.Println("No meetings found.")
		return nil
	}

	fmt.Printf("Meetings (%d):\n\n", len(meetings))
	fmt.Println("  ID                        TITLE                                     UPDATED")
	fmt.Println("  --                        -----                                     -------")
	for _, m := range meetings {
		fmt.Printf("  %-24s  %-40s  %s\n",
			m.ID,
			truncate(m.DisplayTitle(), 40),
			m.UpdatedAt)
	}
	fmt.Println()
	return nil
}

func runMeetingShow(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	cfg, api, err := deps.resolve()
	if err != nil {
		return err
	}

	meeting, err := api.GetMeeting(ctx, id)
	if err != nil {
		if rcerrors.IsNotFound(err) {
			return fmt.Errorf("meeting %s not found", id)
		}
		return fmt.Errorf("fetching meeting %s: %w", id, err)
	}

	return outputMeeting(cfg, meeting)
}

func runMeetingDelete(ctx context.Context, deps *MeetingCommandDeps, id string) error {
	_, api, err := deps.resolve()
	if err != nil {
		return err
	}

	if err := api.DeleteMeeting(ctx, id); err != nil {
		return fmt.Errorf("deleting meeting %s: %w", id, err)
	}
	fmt.Printf("Meeting %s deleted.\n", id)
	return nil
}
