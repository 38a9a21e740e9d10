// Package cmd provides CLI commands for the recap tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// outputJSON outputs data as JSON.
func outputJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// outputYAML outputs data as YAML.
func outputYAML(data any) error {
	enc := yaml.NewEncoder(os.Stdout)
	return enc.Encode(data)
}

// getOutputFormat returns the configured output format, defaulting to text.
func getOutputFormat(cfg *config.CLIConfig) config.OutputFormat {
	if cfg != nil && cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return config.OutputFormatText
}

// newLogger builds a logger from the CLI configuration.
func newLogger(cfg *config.CLIConfig) logging.Logger {
	logCfg := &logging.Config{
		Level:      logging.Level(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
	}
	if cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}
	if cfg.Log.File != "" {
		logCfg.File = &logging.FileConfig{Path: cfg.Log.File}
	}
	return logging.NewLogger(logCfg)
}

// connectFromConfig builds the backend client from the CLI configuration.
func connectFromConfig(cfg *config.CLIConfig) (*client.Client, error) {
	return client.NewClient(cfg.ServerURL, &client.Options{
		Timeout: cfg.Timeout,
		Logger:  newLogger(cfg),
	}), nil
}

// consoleNotifier prints workspace feedback to the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Notice(msg string) {
	fmt.Println(msg)
}

func (consoleNotifier) Error(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

// truncate shortens s to max runes, appending an ellipsis when trimmed.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// findCommand returns the direct subcommand with the given name, or nil.
func findCommand(parent *cobra.Command, name string) *cobra.Command {
	for _, sub := range parent.Commands() {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}
