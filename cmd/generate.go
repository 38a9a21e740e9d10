package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/pkg/render"
	"github.com/recaphq/recap-cli/pkg/transcript"
	"github.com/recaphq/recap-cli/pkg/watch"
	"github.com/recaphq/recap-cli/workspace"
)

// GenerateCommandDeps holds the dependencies for the generate command.
type GenerateCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultGenerateDeps returns the default dependencies for production use.
func DefaultGenerateDeps() *GenerateCommandDeps {
	return &GenerateCommandDeps{
		LoadConfig: config.LoadConfig,
		InitClient: connectFromConfig,
	}
}

// Generate command flags.
var (
	generateTitle        string
	generateInstructions string
	generateText         string
	generateFile         string
	generateWatch        bool
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(deps *GenerateCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultGenerateDeps()
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a meeting summary from a transcript",
		Long: `Generate a meeting summary by submitting a transcript to the backend.

The transcript comes from --text or --file. WebVTT files (.vtt) are parsed
locally into speaker-attributed lines before submission; any other file is
sent as plain text.

With --watch the command stays running and regenerates the summary every
time the transcript file changes, which suits transcription tools that
append to a file during a live meeting.

Examples:
  recap generate --title "Q3 Planning" --file meeting.vtt
  recap generate --text "Alice: let's ship in October." --instructions "Focus on decisions"
  recap generate --file live.vtt --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVar(&generateTitle, "title", "", "Meeting title")
	cmd.Flags().StringVar(&generateInstructions, "instructions", "", "Extra instructions for the summarizer")
	cmd.Flags().StringVar(&generateText, "text", "", "Transcript text")
	cmd.Flags().StringVarP(&generateFile, "file", "f", "", "Transcript file (.vtt or plain text)")
	cmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate whenever the transcript file changes")

	return cmd
}

func runGenerate(ctx context.Context, deps *GenerateCommandDeps) error {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}
	if generateWatch && generateFile == "" {
		return fmt.Errorf("--watch requires --file")
	}

	api, err := deps.InitClient(cfg)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	session := workspace.NewSession(api, &workspace.SessionOptions{
		Notifier:   &consoleNotifier{},
		RenderHTML: render.SummaryHTML,
		Logger:     log,
	})

	instructions := generateInstructions
	if instructions == "" {
		instructions = cfg.DefaultInstructions
	}

	generateOnce := func(ctx context.Context) error {
		input := workspace.GenerateInput{
			Title:        generateTitle,
			Instructions: instructions,
			Text:         generateText,
		}
		if generateFile != "" {
			tr, err := transcript.Load(generateFile)
			if err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}
			input.Text = tr.Text
		}
		if err := session.Generate(ctx, input); err != nil {
			return err
		}
		return outputMeeting(cfg, session.Current())
	}

	if !generateWatch {
		return generateOnce(ctx)
	}

	watcher, err := watch.New(generateFile, watch.DefaultSettle, func(ctx context.Context) {
		if err := generateOnce(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}, log)
	if err != nil {
		return fmt.Errorf("watching %s: %w", generateFile, err)
	}

	// Summarize the current contents once before waiting for changes.
	if err := generateOnce(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	fmt.Printf("Watching %s for changes (Ctrl+C to stop)...\n", generateFile)
	return watcher.Run(ctx)
}

// outputMeeting renders a meeting in the configured output format.
func outputMeeting(cfg *config.CLIConfig, m *client.Meeting) error {
	switch getOutputFormat(cfg) {
	case config.OutputFormatJSON:
		return outputJSON(m)
	case config.OutputFormatYAML:
		return outputYAML(m)
	default:
		return outputMeetingText(m)
	}
}

func outputMeetingText(m *client.Meeting) error {
	fmt.Printf("%s\n", m.DisplayTitle())
	fmt.Printf("ID: %s\n", m.ID)
	if m.Instructions != "" {
		fmt.Printf("Instructions: %s\n", m.Instructions)
	}
	if len(m.Recipients) > 0 {
		fmt.Printf("Recipients: %s\n", strings.Join(m.Recipients, ", "))
	}
	if m.UpdatedAt != "" {
		fmt.Printf("Updated: %s\n", m.UpdatedAt)
	}
	fmt.Println()
	fmt.Println(m.Summary)
	return nil
}
