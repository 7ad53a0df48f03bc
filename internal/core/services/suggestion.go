package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// Ensure the suggestion types implement their interfaces.
var (
	_ driving.SuggestionService  = (*SuggestionService)(nil)
	_ driving.SuggestionResolver = (*Resolver)(nil)
)

// ResolverConfig tunes a Resolver. Zero values fall back to defaults.
type ResolverConfig struct {
	Debounce  time.Duration
	BlurGrace time.Duration
	Limit     int
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if c.Debounce <= 0 {
		c.Debounce = domain.DefaultSuggestDebounce
	}
	if c.BlurGrace <= 0 {
		c.BlurGrace = domain.DefaultBlurGrace
	}
	if c.Limit <= 0 {
		c.Limit = domain.DefaultSuggestionLimit
	}
	return c
}

// SuggestionService creates resolvers over a suggestion source.
// A nil source disables remote lookups.
type SuggestionService struct {
	source driven.SuggestionSource
	cfg    ResolverConfig
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(source driven.SuggestionSource, cfg ResolverConfig) *SuggestionService {
	return &SuggestionService{source: source, cfg: cfg.withDefaults()}
}

// Suggest performs a single lookup without debouncing.
func (s *SuggestionService) Suggest(ctx context.Context, category, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	if s.source == nil {
		return nil, domain.ErrBaseURLUnset
	}
	names, err := s.source.Suggest(ctx, category, query, s.cfg.Limit)
	if err != nil {
		return nil, err
	}
	return capCandidates(names, s.cfg.Limit), nil
}

// NewResolver creates a resolver for one input. Requests inherit ctx.
func (s *SuggestionService) NewResolver(ctx context.Context, category string) driving.SuggestionResolver {
	return NewResolver(ctx, s.source, category, s.cfg)
}

// Resolver turns keystrokes of one input into debounced, cancellable
// suggestion requests. Only the result of the latest query is ever applied.
type Resolver struct {
	mu       sync.Mutex
	parent   context.Context
	source   driven.SuggestionSource
	category string
	cfg      ResolverConfig

	state domain.SuggestionState

	// gen increments on every query change; a fired request applies its
	// result only if gen is unchanged when it returns.
	gen      uint64
	debounce *time.Timer
	cancel   context.CancelFunc

	blurSeq uint64
	blur    *time.Timer

	changes chan domain.SuggestionState
	closed  bool
}

// NewResolver creates a resolver. A nil source never issues requests.
func NewResolver(ctx context.Context, source driven.SuggestionSource, category string, cfg ResolverConfig) *Resolver {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Resolver{
		parent:   ctx,
		source:   source,
		category: category,
		cfg:      cfg.withDefaults(),
		changes:  make(chan domain.SuggestionState, 1),
	}
}

// SetQuery records the typed value and schedules a search.
func (r *Resolver) SetQuery(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.state.Query = query
	r.supersede()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" || r.source == nil {
		r.state.Candidates = nil
		r.state.Loading = false
		r.notify()
		return
	}

	gen := r.gen
	r.debounce = time.AfterFunc(r.cfg.Debounce, func() {
		r.fire(gen, trimmed)
	})
	r.notify()
}

// supersede invalidates the pending timer and the in-flight request.
// Caller holds mu.
func (r *Resolver) supersede() {
	r.gen++
	if r.debounce != nil {
		r.debounce.Stop()
		r.debounce = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Resolver) fire(gen uint64, query string) {
	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(r.parent)
	r.cancel = cancel
	r.state.Loading = true
	r.notify()
	r.mu.Unlock()

	logger.Debug("suggest %s: %q", r.category, query)
	names, err := r.source.Suggest(ctx, r.category, query, r.cfg.Limit)
	canceled := ctx.Err() != nil || errors.Is(err, context.Canceled)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || gen != r.gen || canceled {
		return
	}
	r.cancel = nil
	r.state.Loading = false
	if err != nil {
		logger.Debug("suggest %s failed: %v", r.category, err)
		r.state.Candidates = nil
	} else {
		r.state.Candidates = capCandidates(names, r.cfg.Limit)
	}
	r.notify()
}

// Focus opens the input and cancels a pending blur.
func (r *Resolver) Focus() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.stopBlur()
	r.state.Open = true
	r.notify()
}

// Blur closes the menu once the grace delay elapses, leaving time for a
// pointer selection to land first.
func (r *Resolver) Blur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.stopBlur()
	seq := r.blurSeq
	r.blur = time.AfterFunc(r.cfg.BlurGrace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || seq != r.blurSeq {
			return
		}
		r.blur = nil
		r.supersede()
		r.state.Open = false
		r.state.Loading = false
		r.state.Candidates = nil
		r.notify()
	})
}

// stopBlur cancels a pending blur. Caller holds mu.
func (r *Resolver) stopBlur() {
	r.blurSeq++
	if r.blur != nil {
		r.blur.Stop()
		r.blur = nil
	}
}

// Select commits a candidate as the value and closes the menu.
// Selecting does not start a new search.
func (r *Resolver) Select(candidate string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.stopBlur()
	r.supersede()
	r.state.Query = candidate
	r.state.Open = false
	r.state.Loading = false
	r.state.Candidates = nil
	r.notify()
}

// State returns a snapshot of the suggestion state.
func (r *Resolver) State() domain.SuggestionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Changes delivers the latest snapshot after each change. Intermediate
// snapshots are dropped when the reader falls behind.
func (r *Resolver) Changes() <-chan domain.SuggestionState {
	return r.changes
}

// Close cancels pending work and closes the change channel.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.stopBlur()
	r.supersede()
	r.closed = true
	close(r.changes)
}

func (r *Resolver) snapshot() domain.SuggestionState {
	s := r.state
	if s.Candidates != nil {
		s.Candidates = append([]string(nil), s.Candidates...)
	}
	return s
}

// notify publishes the current state, replacing an unread one. Caller holds mu.
func (r *Resolver) notify() {
	s := r.snapshot()
	select {
	case r.changes <- s:
		return
	default:
	}
	select {
	case <-r.changes:
	default:
	}
	select {
	case r.changes <- s:
	default:
	}
}

func capCandidates(names []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}
