package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

// --- Mock implementations ---

type suggestCall struct {
	category string
	query    string
	limit    int
}

// mockSuggestionSource implements driven.SuggestionSource for testing.
type mockSuggestionSource struct {
	mu      sync.Mutex
	calls   []suggestCall
	results map[string][]string
	err     error

	// block holds requests for these queries until ctx is done or release is closed.
	block   map[string]bool
	release chan struct{}
}

func newMockSuggestionSource() *mockSuggestionSource {
	return &mockSuggestionSource{
		results: make(map[string][]string),
		block:   make(map[string]bool),
		release: make(chan struct{}),
	}
}

func (m *mockSuggestionSource) Suggest(ctx context.Context, category, query string, limit int) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, suggestCall{category: category, query: query, limit: limit})
	blocked := m.block[query]
	result := m.results[query]
	err := m.err
	m.mu.Unlock()

	if blocked {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.release:
		}
	}
	return result, err
}

func (m *mockSuggestionSource) Calls() []suggestCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]suggestCall(nil), m.calls...)
}

func fastConfig() ResolverConfig {
	return ResolverConfig{Debounce: 20 * time.Millisecond, BlurGrace: 20 * time.Millisecond, Limit: 5}
}

// --- Tests ---

func TestResolver_DebounceCoalescesKeystrokes(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["par"] = []string{"Paracetamol", "Paroxetine"}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.SetQuery("p")
	r.SetQuery("pa")
	r.SetQuery("par")

	require.Eventually(t, func() bool {
		return len(r.State().Candidates) == 2
	}, time.Second, 5*time.Millisecond)

	calls := source.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, suggestCall{category: "medicine", query: "par", limit: 5}, calls[0])

	state := r.State()
	assert.False(t, state.Loading)
	assert.True(t, state.ShowMenu())
}

func TestResolver_EmptyQueryMakesNoRequest(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["para"] = []string{"Paracetamol"}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.SetQuery("para")
	require.Eventually(t, func() bool {
		return len(r.State().Candidates) == 1
	}, time.Second, 5*time.Millisecond)

	r.SetQuery("   ")

	state := r.State()
	assert.Empty(t, state.Candidates)
	assert.False(t, state.Loading)

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, source.Calls(), 1)
}

func TestResolver_NilSourceNeverRequests(t *testing.T) {
	r := NewResolver(context.Background(), nil, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.SetQuery("para")
	time.Sleep(60 * time.Millisecond)

	state := r.State()
	assert.Equal(t, "para", state.Query)
	assert.Empty(t, state.Candidates)
	assert.False(t, state.Loading)
}

func TestResolver_SupersededRequestIsCanceled(t *testing.T) {
	source := newMockSuggestionSource()
	source.block["a"] = true
	source.results["a"] = []string{"Stale"}
	source.results["ab"] = []string{"Fresh"}

	r := NewResolver(context.Background(), source, "diagnosis", fastConfig())
	defer r.Close()

	r.SetQuery("a")
	require.Eventually(t, func() bool {
		return r.State().Loading
	}, time.Second, 5*time.Millisecond)

	r.SetQuery("ab")
	require.Eventually(t, func() bool {
		s := r.State()
		return !s.Loading && len(s.Candidates) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"Fresh"}, r.State().Candidates)
	assert.Len(t, source.Calls(), 2)
}

func TestResolver_LateResultNeverOverwritesNewer(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["old"] = []string{"Old"}
	source.results["new"] = []string{"New"}

	// A source that ignores cancellation and answers late.
	slow := &lateSource{inner: source, delay: map[string]time.Duration{"old": 80 * time.Millisecond}}

	r := NewResolver(context.Background(), slow, "diagnosis", fastConfig())
	defer r.Close()

	r.SetQuery("old")
	require.Eventually(t, func() bool { return r.State().Loading }, time.Second, 5*time.Millisecond)
	r.SetQuery("new")

	require.Eventually(t, func() bool {
		return len(r.State().Candidates) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, []string{"New"}, r.State().Candidates)
}

type lateSource struct {
	inner *mockSuggestionSource
	delay map[string]time.Duration
}

func (l *lateSource) Suggest(_ context.Context, category, query string, limit int) ([]string, error) {
	time.Sleep(l.delay[query])
	return l.inner.Suggest(context.Background(), category, query, limit)
}

func TestResolver_FailureClearsCandidates(t *testing.T) {
	source := newMockSuggestionSource()
	source.err = &domain.StatusError{Op: "suggest", StatusCode: 500}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.SetQuery("para")

	require.Eventually(t, func() bool {
		return len(source.Calls()) == 1 && !r.State().Loading
	}, time.Second, 5*time.Millisecond)

	state := r.State()
	assert.Empty(t, state.Candidates)
	assert.False(t, state.ShowMenu())
}

func TestResolver_DropsOnlyEmptyNamesAndCaps(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["a"] = []string{"A1", "", "A2", "  ", "A3", "A4", "A5", "A6"}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.SetQuery("a")
	require.Eventually(t, func() bool {
		return len(r.State().Candidates) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"A1", "A2", "  ", "A3", "A4"}, r.State().Candidates)
}

func TestResolver_BlurClosesAfterGrace(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["a"] = []string{"A1"}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.SetQuery("a")
	require.Eventually(t, func() bool { return r.State().ShowMenu() }, time.Second, 5*time.Millisecond)

	r.Blur()
	assert.True(t, r.State().Open, "menu stays open during the grace delay")

	require.Eventually(t, func() bool { return !r.State().Open }, time.Second, 5*time.Millisecond)
	assert.Empty(t, r.State().Candidates)
	assert.Equal(t, "a", r.State().Query)
}

func TestResolver_FocusCancelsPendingBlur(t *testing.T) {
	r := NewResolver(context.Background(), nil, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.Blur()
	r.Focus()

	time.Sleep(60 * time.Millisecond)
	assert.True(t, r.State().Open)
}

func TestResolver_SelectClosesWithoutSearching(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["para"] = []string{"Paracetamol"}

	r := NewResolver(context.Background(), source, "medicine", fastConfig())
	defer r.Close()

	r.Focus()
	r.SetQuery("para")
	require.Eventually(t, func() bool { return r.State().ShowMenu() }, time.Second, 5*time.Millisecond)

	r.Select("Paracetamol")

	state := r.State()
	assert.Equal(t, "Paracetamol", state.Query)
	assert.False(t, state.Open)
	assert.Empty(t, state.Candidates)

	time.Sleep(60 * time.Millisecond)
	assert.Len(t, source.Calls(), 1)
}

func TestResolver_ChangesChannel(t *testing.T) {
	r := NewResolver(context.Background(), nil, "medicine", fastConfig())

	r.Focus()
	select {
	case s := <-r.Changes():
		assert.True(t, s.Open)
	case <-time.After(time.Second):
		t.Fatal("expected a state change")
	}

	r.Close()
	_, ok := <-r.Changes()
	assert.False(t, ok, "channel is closed by Close")

	// Calls after Close are ignored.
	r.SetQuery("x")
	r.Close()
}

func TestSuggestionService_Suggest(t *testing.T) {
	source := newMockSuggestionSource()
	source.results["nur"] = []string{"Nurse", "", "Nurse Practitioner"}
	service := NewSuggestionService(source, ResolverConfig{})

	names, err := service.Suggest(context.Background(), "profession", "  nur ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nurse", "Nurse Practitioner"}, names)
	assert.Equal(t, domain.DefaultSuggestionLimit, source.Calls()[0].limit)

	names, err = service.Suggest(context.Background(), "profession", "")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Len(t, source.Calls(), 1)
}

func TestSuggestionService_NoSource(t *testing.T) {
	service := NewSuggestionService(nil, ResolverConfig{})

	_, err := service.Suggest(context.Background(), "profession", "nur")
	assert.True(t, errors.Is(err, domain.ErrBaseURLUnset))

	r := service.NewResolver(context.Background(), "profession")
	defer r.Close()
	r.SetQuery("nur")
	assert.False(t, r.State().Loading)
}
