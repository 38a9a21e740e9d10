// Package config provides CLI configuration management for the recap command-line tool.
// It supports loading configuration from YAML files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultServerURL      = "http://localhost:4000"
	DefaultTimeout        = 2 * time.Minute
	DefaultOutputFormat   = OutputFormatText
	DefaultSearchDebounce = 300 * time.Millisecond
	DefaultSearchLimit    = 10
	DefaultConfigDir      = ".recap"
	DefaultConfigFile     = "config.yaml"
)

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level,omitempty"`

	// File is an optional path for a rotating log file.
	File string `yaml:"file,omitempty"`

	// JSON switches console logging to JSON output.
	JSON bool `yaml:"json,omitempty"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// ServerURL is the base URL of the summarization backend.
	ServerURL string `yaml:"server_url"`

	// Timeout is the default timeout for API requests. Generation can take
	// a while on long transcripts, so the default is generous.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// SearchDebounce is the idle delay before an interactive search query
	// is sent to the backend.
	SearchDebounce time.Duration `yaml:"search_debounce"`

	// SearchLimit is the default result-count cap for searches.
	SearchLimit int `yaml:"search_limit"`

	// DefaultInstructions is prefilled as the generation instructions when
	// none are given on the command line.
	DefaultInstructions string `yaml:"default_instructions,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		ServerURL:      DefaultServerURL,
		Timeout:        DefaultTimeout,
		OutputFormat:   DefaultOutputFormat,
		SearchDebounce: DefaultSearchDebounce,
		SearchLimit:    DefaultSearchLimit,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $RECAP_CONFIG_DIR if set, otherwise ~/.recap
func ConfigDir() (string, error) {
	if dir := os.Getenv("RECAP_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.recap/config.yaml or $RECAP_CONFIG_DIR/config.yaml)
// 3. Environment variables (RECAP_SERVER_URL, RECAP_TIMEOUT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling durations as strings.
	type configFile struct {
		ServerURL           string       `yaml:"server_url"`
		Timeout             string       `yaml:"timeout"`
		OutputFormat        OutputFormat `yaml:"output_format"`
		SearchDebounce      string       `yaml:"search_debounce"`
		SearchLimit         int          `yaml:"search_limit"`
		DefaultInstructions string       `yaml:"default_instructions"`
		Debug               bool         `yaml:"debug"`
		Log                 LogConfig    `yaml:"log"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.ServerURL != "" {
		cfg.ServerURL = fileCfg.ServerURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.SearchDebounce != "" {
		debounce, err := time.ParseDuration(fileCfg.SearchDebounce)
		if err != nil {
			return fmt.Errorf("parsing search_debounce: %w", err)
		}
		cfg.SearchDebounce = debounce
	}
	if fileCfg.SearchLimit > 0 {
		cfg.SearchLimit = fileCfg.SearchLimit
	}
	if fileCfg.DefaultInstructions != "" {
		cfg.DefaultInstructions = fileCfg.DefaultInstructions
	}
	cfg.Debug = fileCfg.Debug
	cfg.Log = fileCfg.Log

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("RECAP_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}

	if v := os.Getenv("RECAP_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("RECAP_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("RECAP_SEARCH_DEBOUNCE"); v != "" {
		if debounce, err := time.ParseDuration(v); err == nil {
			cfg.SearchDebounce = debounce
		}
	}

	if v := os.Getenv("RECAP_SEARCH_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			cfg.SearchLimit = limit
		}
	}

	if v := os.Getenv("RECAP_DEFAULT_INSTRUCTIONS"); v != "" {
		cfg.DefaultInstructions = v
	}

	if v := os.Getenv("RECAP_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	if v := os.Getenv("RECAP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("RECAP_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if v := os.Getenv("RECAP_LOG_JSON"); v == "true" || v == "1" {
		cfg.Log.JSON = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.SearchDebounce < 0 {
		return fmt.Errorf("search_debounce must not be negative")
	}

	if c.SearchLimit <= 0 {
		return fmt.Errorf("search_limit must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with durations as strings.
	type configFile struct {
		ServerURL           string       `yaml:"server_url"`
		Timeout             string       `yaml:"timeout"`
		OutputFormat        OutputFormat `yaml:"output_format"`
		SearchDebounce      string       `yaml:"search_debounce"`
		SearchLimit         int          `yaml:"search_limit"`
		DefaultInstructions string       `yaml:"default_instructions,omitempty"`
		Debug               bool         `yaml:"debug,omitempty"`
		Log                 LogConfig    `yaml:"log,omitempty"`
	}

	fileCfg := configFile{
		ServerURL:           cfg.ServerURL,
		Timeout:             cfg.Timeout.String(),
		OutputFormat:        cfg.OutputFormat,
		SearchDebounce:      cfg.SearchDebounce.String(),
		SearchLimit:         cfg.SearchLimit,
		DefaultInstructions: cfg.DefaultInstructions,
		Debug:               cfg.Debug,
		Log:                 cfg.Log,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
