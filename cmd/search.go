package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/config"
	"github.com/recaphq/recap-cli/workspace"
)

// SearchCommandDeps holds the dependencies for the search command.
type SearchCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	InitClient func(*config.CLIConfig) (*client.Client, error)
}

// DefaultSearchDeps returns the default dependencies for production use.
func DefaultSearchDeps() *SearchCommandDeps {
	return &SearchCommandDeps{
		LoadConfig: config.LoadConfig,
		InitClient: connectFromConfig,
	}
}

// Search command flags.
var (
	searchScope       string
	searchLimit       int
	searchInteractive bool
)

// NewSearchCommand creates the search command.
func NewSearchCommand(deps *SearchCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultSearchDeps()
	}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored meetings by title or summary",
		Long: `Search the stored meeting collection.

Scope controls which fields are matched:
  title    Match meeting titles only
  summary  Match summary text only
  both     Match either (default)

With --interactive the command opens a live prompt: results update as you
type, with a short settle delay so rapid keystrokes trigger a single
backend query. Tab cycles the scope, Esc or Ctrl+C exits.

Examples:
  recap search "budget review"
  recap search okr --scope title --limit 5
  recap search --interactive`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if searchInteractive {
				return runInteractiveSearch(cmd.Context(), deps, strings.Join(args, " "))
			}
			if len(args) == 0 {
				return fmt.Errorf("a query is required unless --interactive is set")
			}
			return runSearch(cmd.Context(), deps, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&searchScope, "scope", string(client.ScopeBoth), "Search scope: title, summary, or both")
	cmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default from config)")
	cmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Live search prompt")

	return cmd
}

func (deps *SearchCommandDeps) resolve() (*config.CLIConfig, *client.Client, error) {
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

func runSearch(ctx context.Context, deps *SearchCommandDeps, query string) error {
	cfg, api, err := deps.resolve()
	if err != nil {
		return err
	}

	scope := client.SearchScope(searchScope)
	if !scope.IsValid() {
		return fmt.Errorf("invalid scope %q: use title, summary, or both", searchScope)
	}
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.SearchLimit
	}

	results, err := api.SearchMeetings(ctx, query, scope, limit)
	if err != nil {
		return fmt.Errorf("searching meetings: %w", err)
	}

	switch getOutputFormat(cfg) {
	case config.OutputFormatJSON:
		return outputJSON(results)
	case config.OutputFormatYAML:
		return outputYAML(results)
	default:
		return outputSearchResultsText(query, results)
	}
}

func outputSearchResultsText(query string, results []client.SearchResult) error {
	if len(results) == 0 {
		fmt.Printf("No meetings match %q.\n", query)
		return nil
	}

	fmt.Printf("Results for %q (%d):\n\n", query, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "Untitled Meeting"
		}
		fmt.Printf("  %-24s  %s\n", r.ID, title)
		if r.Summary != "" {
			fmt.Printf("      %s\n", truncate(strings.ReplaceAll(r.Summary, "\n", " "), 100))
		}
	}
	fmt.Println()
	return nil
}

// scopeRing is the Tab cycling order in interactive search.
var scopeRing = []client.SearchScope{client.ScopeBoth, client.ScopeTitle, client.ScopeSummary}

func runInteractiveSearch(ctx context.Context, deps *SearchCommandDeps, initial string) error {
	cfg, api, err := deps.resolve()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("interactive search requires a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	redraw := make(chan workspace.SearchState, 8)
	searcher := workspace.NewSearcher(api, &workspace.SearcherOptions{
		Debounce: cfg.SearchDebounce,
		Limit:    cfg.SearchLimit,
		Logger:   log,
		OnUpdate: func(st workspace.SearchState) {
			select {
			case redraw <- st:
			default:
			}
		},
	})
	defer searcher.Close()

	input := []rune(initial)
	scopeIdx := 0
	drawSearchScreen(string(input), scopeRing[scopeIdx], searcher.State())
	searcher.SetQuery(string(input))

	// Raw-mode stdin delivers multibyte UTF-8 sequences; decode whole runes
	// so non-ASCII queries survive intact.
	keys := make(chan rune, 16)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			r, _, err := reader.ReadRune()
			if err != nil {
				close(keys)
				return
			}
			keys <- r
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st := <-redraw:
			drawSearchScreen(string(input), scopeRing[scopeIdx], st)
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			switch key {
			case 3, 27: // Ctrl+C, Esc
				fmt.Print("\r\n")
				return nil
			case 9: // Tab cycles scope
				scopeIdx = (scopeIdx + 1) % len(scopeRing)
				searcher.SetScope(scopeRing[scopeIdx])
			default:
				var changed bool
				input, changed = applyKeystroke(input, key)
				if changed {
					searcher.SetQuery(string(input))
				}
			}
			drawSearchScreen(string(input), scopeRing[scopeIdx], searcher.State())
		}
	}
}

// applyKeystroke folds one decoded rune into the input line. Backspace
// removes the last rune; any printable rune, ASCII or not, appends.
func applyKeystroke(input []rune, key rune) ([]rune, bool) {
	switch key {
	case 127, 8: // Backspace
		if len(input) == 0 {
			return input, false
		}
		return input[:len(input)-1], true
	default:
		if key < 32 {
			return input, false
		}
		return append(input, key), true
	}
}

// drawSearchScreen repaints the interactive prompt. Raw mode needs explicit
// carriage returns.
func drawSearchScreen(input string, scope client.SearchScope, st workspace.SearchState) {
	fmt.Print("\033[2J\033[H")
	status := ""
	if st.Searching {
		status = "  searching..."
	}
	fmt.Printf("Search (%s): %s_%s\r\n", scope, input, status)
	fmt.Print("\r\n")
	if st.Query == "" {
		fmt.Print("Type to search. Tab: scope, Esc: quit.\r\n")
		return
	}
	if !st.Searching && len(st.Results) == 0 {
		fmt.Printf("No meetings match %q.\r\n", st.Query)
		return
	}
	for _, r := range st.Results {
		title := r.Title
		if title == "" {
			title = "Untitled Meeting"
		}
		fmt.Printf("  %-24s  %s\r\n", r.ID, truncate(title, 50))
	}
}
