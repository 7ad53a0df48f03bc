package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// Ensure DropdownCache implements the interface.
var _ driven.DropdownCache = (*DropdownCache)(nil)

type dropdownEntry struct {
	options   []string
	expiresAt time.Time
}

// DropdownCache keeps option lists for the lifetime of the process.
type DropdownCache struct {
	mu      sync.RWMutex
	entries map[string]dropdownEntry
	now     func() time.Time
}

// NewDropdownCache creates an empty cache.
func NewDropdownCache() *DropdownCache {
	return &DropdownCache{
		entries: make(map[string]dropdownEntry),
		now:     time.Now,
	}
}

// Get returns the cached options of a category if present and fresh.
func (c *DropdownCache) Get(_ context.Context, category string) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[category]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]string(nil), e.options...), true, nil
}

// Set stores options. A zero ttl never expires.
func (c *DropdownCache) Set(_ context.Context, category string, options []string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := dropdownEntry{options: append([]string(nil), options...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[category] = e
	return nil
}

// Invalidate drops one category, or every category when empty.
func (c *DropdownCache) Invalidate(_ context.Context, category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if category == "" {
		c.entries = make(map[string]dropdownEntry)
		return nil
	}
	delete(c.entries, category)
	return nil
}

// Close is a no-op.
func (c *DropdownCache) Close() error {
	return nil
}
