package cmd

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
)

func searchMockConfig() *config.CLIConfig {
	return &config.CLIConfig{
		ServerURL:      "http://localhost:4000",
		OutputFormat:   config.OutputFormatText,
		Timeout:        30 * time.Second,
		SearchDebounce: 300 * time.Millisecond,
		SearchLimit:    10,
	}
}

func createSearchTestDeps(cfg *config.CLIConfig) *SearchCommandDeps {
	return &SearchCommandDeps{
		Config: cfg,
		LoadConfig: func() (*config.CLIConfig, error) {
			return cfg, nil
		},
		InitClient: func(cfg *config.CLIConfig) (*client.Client, error) {
			return client.NewClient(cfg.ServerURL, nil), nil
		},
	}
}

func TestNewSearchCommand(t *testing.T) {
	cmd := NewSearchCommand(createSearchTestDeps(searchMockConfig()))

	if cmd == nil {
		t.Fatal("NewSearchCommand returned nil")
	}
	if !strings.HasPrefix(cmd.Use, "search") {
		t.Errorf("expected Use to start with 'search', got %q", cmd.Use)
	}

	for _, flag := range []string{"scope", "limit", "interactive"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}
}

func TestApplyKeystroke_MultibyteInput(t *testing.T) {
	// Raw-mode stdin delivers "café" as six bytes; decoding whole runes
	// must keep the accented character intact.
	reader := bufio.NewReader(strings.NewReader("café"))
	var input []rune
	for {
		r, _, err := reader.ReadRune()
		if err != nil {
			break
		}
		var changed bool
		input, changed = applyKeystroke(input, r)
		if !changed {
			t.Errorf("printable rune %q should change the input", r)
		}
	}
	if got := string(input); got != "café" {
		t.Errorf("input = %q, want %q", got, "café")
	}

	input, changed := applyKeystroke(input, 127)
	if !changed || string(input) != "caf" {
		t.Errorf("backspace should remove the whole rune, got %q", string(input))
	}

	if _, changed := applyKeystroke(nil, 127); changed {
		t.Error("backspace on empty input should not report a change")
	}
	if _, changed := applyKeystroke(nil, 7); changed {
		t.Error("control characters should not change the input")
	}
}

func TestRunSearch_InvalidScope(t *testing.T) {
	searchScope = "everything"
	t.Cleanup(func() { searchScope = string(client.ScopeBoth) })

	err := runSearch(context.Background(), createSearchTestDeps(searchMockConfig()), "budget")
	if err == nil {
		t.Fatal("expected error for invalid scope")
	}
	if !strings.Contains(err.Error(), "invalid scope") {
		t.Errorf("expected invalid scope error, got: %v", err)
	}
}
