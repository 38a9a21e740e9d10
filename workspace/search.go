package workspace

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/recaphq/recap-cli/client"
	"github.com/recaphq/recap-cli/pkg/logging"
)

// DefaultDebounce is the settle delay before an edited query is executed.
const DefaultDebounce = 300 * time.Millisecond

// DefaultSearchLimit caps the number of results per query.
const DefaultSearchLimit = 10

// SearchAPI is the backend surface the searcher needs. *client.Client
// satisfies it.
type SearchAPI interface {
	SearchMeetings(ctx context.Context, query string, scope client.SearchScope, limit int) ([]client.SearchResult, error)
}

// SearchState is a point-in-time copy of the searcher's visible state.
type SearchState struct {
	Query     string
	Scope     client.SearchScope
	Results   []client.SearchResult
	Searching bool
}

// SearcherOptions configures a Searcher.
type SearcherOptions struct {
	// Debounce is the settle delay before a query executes. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Limit caps results per query. Zero means DefaultSearchLimit.
	Limit int

	// OnUpdate is invoked after every visible state change, outside the
	// searcher's lock. Nil disables notifications.
	OnUpdate func(SearchState)

	// Logger receives debug logs. Nil disables logging.
	Logger logging.Logger
}

// Searcher runs debounced live search over the stored meeting collection.
// Every input change bumps a sequence counter; debounce timers and backend
// responses carry the sequence they were issued under and are discarded
// when a newer input has superseded them. A response for an abandoned
// query can therefore never overwrite the results of the current one.
type Searcher struct {
	mu       sync.Mutex
	api      SearchAPI
	debounce time.Duration
	limit    int
	onUpdate func(SearchState)
	log      logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	query     string // trimmed, NFC-normalized
	scope     client.SearchScope
	results   []client.SearchResult
	searching bool
	seq       uint64
	timer     *time.Timer
}

// NewSearcher creates a Searcher backed by api. Call Close when done to
// cancel any in-flight query.
func NewSearcher(api SearchAPI, opts *SearcherOptions) *Searcher {
	if opts == nil {
		opts = &SearcherOptions{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Searcher{
		api:      api,
		debounce: debounce,
		limit:    limit,
		onUpdate: opts.OnUpdate,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		scope:    client.ScopeBoth,
	}
}

// SetQuery records a new query. The query is trimmed and NFC-normalized;
// an empty result clears the result list immediately and invalidates any
// in-flight search, otherwise execution is deferred by the debounce delay.
func (s *Searcher) SetQuery(q string) {
	s.mu.Lock()
	st, changed := s.applyInputLocked(normalizeQuery(q), s.scope)
	s.mu.Unlock()
	if changed {
		s.notify(st)
	}
}

// SetScope records a new search scope, re-running the current query under
// it after the debounce delay.
func (s *Searcher) SetScope(scope client.SearchScope) {
	s.mu.Lock()
	st, changed := s.applyInputLocked(s.query, scope)
	s.mu.Unlock()
	if changed {
		s.notify(st)
	}
}

// State returns a copy of the searcher's visible state.
func (s *Searcher) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close invalidates any pending timer and in-flight query and cancels
// their requests. The searcher must not be used afterwards.
func (s *Searcher) Close() {
	s.mu.Lock()
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Searcher) applyInputLocked(query string, scope client.SearchScope) (SearchState, bool) {
	if query == s.query && scope == s.scope {
		return SearchState{}, false
	}
	s.query = query
	s.scope = scope
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.searching = false
	if query == "" {
		s.results = nil
		return s.stateLocked(), true
	}
	id := s.seq
	s.timer = time.AfterFunc(s.debounce, func() { s.run(id) })
	return s.stateLocked(), true
}

// run executes the query issued under sequence id. It bails out before and
// after the backend call if a newer input has superseded it.
func (s *Searcher) run(id uint64) {
	s.mu.Lock()
	if id != s.seq {
		s.mu.Unlock()
		return
	}
	s.searching = true
	query, scope, limit := s.query, s.scope, s.limit
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)

	results, err := s.api.SearchMeetings(s.ctx, query, scope, limit)

	s.mu.Lock()
	if id != s.seq {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.Warn("search failed", logging.F("query", query), logging.Err(err))
		s.results = []client.SearchResult{}
	} else {
		s.results = results
	}
	s.searching = false
	st = s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

func (s *Searcher) stateLocked() SearchState {
	results := make([]client.SearchResult, len(s.results))
	copy(results, s.results)
	return SearchState{
		Query:     s.query,
		Scope:     s.scope,
		Results:   results,
		Searching: s.searching,
	}
}

func (s *Searcher) notify(st SearchState) {
	if s.onUpdate != nil {
		s.onUpdate(st)
	}
}

// normalizeQuery trims surrounding whitespace and applies Unicode NFC so
// visually identical queries compare equal.
func normalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}
