package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// Ensure DropdownService implements the interface.
var _ driving.DropdownService = (*DropdownService)(nil)

// DropdownService serves option lists through a cache.
type DropdownService struct {
	source driven.DropdownSource
	cache  driven.DropdownCache
	ttl    time.Duration
}

// NewDropdownService creates a new dropdown service. The cache is optional.
func NewDropdownService(source driven.DropdownSource, cache driven.DropdownCache, ttl time.Duration) *DropdownService {
	return &DropdownService{source: source, cache: cache, ttl: ttl}
}

// Options returns the options of a category. Cache failures fall back to
// the source; a source failure is returned.
func (s *DropdownService) Options(ctx context.Context, category string) ([]string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}

	if s.cache != nil {
		options, ok, err := s.cache.Get(ctx, category)
		switch {
		case err != nil:
			logger.Warn("dropdown cache read %s: %v", category, err)
		case ok:
			logger.Debug("dropdown %s: %d options from cache", category, len(options))
			return options, nil
		}
	}

	if s.source == nil {
		return nil, domain.ErrBaseURLUnset
	}
	options, err := s.source.Options(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("fetch %s options: %w", category, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, category, options, s.ttl); err != nil {
			logger.Warn("dropdown cache write %s: %v", category, err)
		}
	}
	return options, nil
}

// Refresh drops the cached options of a category, or all when empty.
func (s *DropdownService) Refresh(ctx context.Context, category string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, strings.TrimSpace(category))
}
