package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recaphq/recap-cli/client"
)

type searchCall struct {
	query string
	scope client.SearchScope
	limit int
}

// fakeSearchAPI records calls and answers through a per-test respond func.
type fakeSearchAPI struct {
	mu      sync.Mutex
	calls   []searchCall
	respond func(query string) ([]client.SearchResult, error)
}

func (f *fakeSearchAPI) SearchMeetings(ctx context.Context, query string, scope client.SearchScope, limit int) ([]client.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query: query, scope: scope, limit: limit})
	f.mu.Unlock()
	return f.respond(query)
}

func (f *fakeSearchAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearchAPI) lastCall() searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func resultsFor(query string) []client.SearchResult {
	return []client.SearchResult{{ID: "m-" + query, Title: query}}
}

func TestSearcher_DebounceCollapsesRapidEdits(t *testing.T) {
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 30 * time.Millisecond})
	defer s.Close()

	s.SetQuery("p")
	s.SetQuery("pl")
	s.SetQuery("plan")

	assert.Eventually(t, func() bool {
		st := s.State()
		return !st.Searching && len(st.Results) == 1 && st.Results[0].Title == "plan"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, api.callCount())
	assert.Equal(t, "plan", api.lastCall().query)
	assert.Equal(t, client.ScopeBoth, api.lastCall().scope)
	assert.Equal(t, DefaultSearchLimit, api.lastCall().limit)
}

func TestSearcher_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		if q == "slow" {
			<-gate
		}
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 5 * time.Millisecond})
	defer s.Close()

	s.SetQuery("slow")
	assert.Eventually(t, func() bool { return api.callCount() == 1 },
		time.Second, time.Millisecond)

	s.SetQuery("fast")
	assert.Eventually(t, func() bool {
		st := s.State()
		return len(st.Results) == 1 && st.Results[0].Title == "fast"
	}, time.Second, time.Millisecond)

	// The abandoned query returns late and must not overwrite anything.
	close(gate)
	time.Sleep(30 * time.Millisecond)
	st := s.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, "fast", st.Results[0].Title)
	assert.False(t, st.Searching)
}

func TestSearcher_EmptyQueryClearsImmediately(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		<-gate
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 5 * time.Millisecond})
	defer s.Close()

	s.SetQuery("plan")
	assert.Eventually(t, func() bool { return s.State().Searching },
		time.Second, time.Millisecond)

	s.SetQuery("   ")
	st := s.State()
	assert.Empty(t, st.Query)
	assert.Empty(t, st.Results)
	assert.False(t, st.Searching)

	close(gate)
	time.Sleep(30 * time.Millisecond)
	st = s.State()
	assert.Empty(t, st.Results)
	assert.False(t, st.Searching)
	assert.Equal(t, 1, api.callCount())
}

func TestSearcher_FailureYieldsEmptyResults(t *testing.T) {
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		return nil, errors.New("backend down")
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 5 * time.Millisecond})
	defer s.Close()

	s.SetQuery("plan")
	assert.Eventually(t, func() bool { return api.callCount() == 1 },
		time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		st := s.State()
		return !st.Searching && len(st.Results) == 0
	}, time.Second, time.Millisecond)
}

func TestSearcher_ScopeChangeReruns(t *testing.T) {
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 5 * time.Millisecond})
	defer s.Close()

	s.SetQuery("plan")
	assert.Eventually(t, func() bool { return api.callCount() == 1 },
		time.Second, time.Millisecond)

	s.SetScope(client.ScopeTitle)
	assert.Eventually(t, func() bool { return api.callCount() == 2 },
		time.Second, time.Millisecond)
	assert.Equal(t, client.ScopeTitle, api.lastCall().scope)
	assert.Equal(t, "plan", api.lastCall().query)
}

func TestSearcher_UnchangedInputDoesNotRerun(t *testing.T) {
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{Debounce: 5 * time.Millisecond})
	defer s.Close()

	s.SetQuery("plan")
	assert.Eventually(t, func() bool { return api.callCount() == 1 },
		time.Second, time.Millisecond)

	// Same query after trimming and normalization: no new search.
	s.SetQuery("  plan  ")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, api.callCount())
}

func TestSearcher_OnUpdateObservesTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []SearchState
	api := &fakeSearchAPI{respond: func(q string) ([]client.SearchResult, error) {
		return resultsFor(q), nil
	}}
	s := NewSearcher(api, &SearcherOptions{
		Debounce: 5 * time.Millisecond,
		OnUpdate: func(st SearchState) {
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		},
	})
	defer s.Close()

	s.SetQuery("plan")
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// Input accepted, search started, results arrived.
	assert.False(t, states[0].Searching)
	assert.True(t, states[1].Searching)
	final := states[len(states)-1]
	assert.False(t, final.Searching)
	require.Len(t, final.Results, 1)
	assert.Equal(t, "plan", final.Results[0].Title)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "plan", normalizeQuery("  plan  "))
	assert.Equal(t, "", normalizeQuery(" \t "))
	// Decomposed and precomposed forms of the same text compare equal.
	assert.Equal(t, normalizeQuery("café"), normalizeQuery("café"))
}
