package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recaphq/recap-cli/config"
)

// ConfigCommandDeps holds the dependencies for config commands.
type ConfigCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	SaveConfig func(*config.CLIConfig) error
}

// DefaultConfigDeps returns the default dependencies for production use.
func DefaultConfigDeps() *ConfigCommandDeps {
	return &ConfigCommandDeps{
		LoadConfig: config.LoadConfig,
		SaveConfig: config.SaveConfig,
	}
}

// Config init flags.
var (
	configInitServer string
	configInitForce  bool
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(deps *ConfigCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultConfigDeps()
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage recap configuration",
		Long: `Manage the recap configuration file.

Configuration is read from ` + "`~/.recap/config.yaml`" + ` and can be
overridden per setting with RECAP_* environment variables.

Subcommands:
  init   Write a starter configuration file
  show   Show the effective configuration
  path   Print the configuration file path`,
	}

	cmd.AddCommand(newConfigInitCommand(deps))
	cmd.AddCommand(newConfigShowCommand(deps))
	cmd.AddCommand(newConfigPathCommand())

	return cmd
}

func newConfigInitCommand(deps *ConfigCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(deps)
		},
	}
	cmd.Flags().StringVar(&configInitServer, "server", config.DefaultServerURL, "Backend server URL")
	cmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration file")
	return cmd
}

func newConfigShowCommand(deps *ConfigCommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(deps)
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func runConfigInit(deps *ConfigCommandDeps) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if !configInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	cfg := config.DefaultConfig()
	cfg.ServerURL = configInitServer
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := deps.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}
	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func runConfigShow(deps *ConfigCommandDeps) error {
	cfg := deps.Config
	if cfg == nil {
		var err error
		cfg, err = deps.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	switch getOutputFormat(cfg) {
	case config.OutputFormatJSON:
		return outputJSON(cfg)
	default:
		return outputYAML(cfg)
	}
}
