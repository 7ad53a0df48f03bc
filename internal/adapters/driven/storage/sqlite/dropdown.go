package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

var timeNow = time.Now

// Ensure DropdownCache implements the interface.
var _ driven.DropdownCache = (*DropdownCache)(nil)

// DropdownCache persists option lists so they survive restarts.
type DropdownCache struct {
	store *Store
	now   func() time.Time
}

// Get returns the cached options of a category if present and fresh.
func (c *DropdownCache) Get(ctx context.Context, category string) ([]string, bool, error) {
	var (
		raw       string
		expiresAt int64
	)
	err := c.store.db.QueryRowContext(ctx,
		"SELECT options, expires_at FROM dropdown_options WHERE category = ?", category,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading dropdown %s: %w", category, err)
	}

	if expiresAt != 0 && c.now().UnixNano() >= expiresAt {
		return nil, false, nil
	}

	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, false, fmt.Errorf("decoding dropdown %s: %w", category, err)
	}
	return options, true, nil
}

// Set stores options. A zero ttl never expires.
func (c *DropdownCache) Set(ctx context.Context, category string, options []string, ttl time.Duration) error {
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encoding dropdown %s: %w", category, err)
	}

	now := c.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO dropdown_options (category, options, fetched_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			options = excluded.options,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, category, string(raw), now.UnixNano(), expiresAt)
	if err != nil {
		return fmt.Errorf("writing dropdown %s: %w", category, err)
	}
	return nil
}

// Invalidate drops one category, or every category when empty.
func (c *DropdownCache) Invalidate(ctx context.Context, category string) error {
	var err error
	if category == "" {
		_, err = c.store.db.ExecContext(ctx, "DELETE FROM dropdown_options")
	} else {
		_, err = c.store.db.ExecContext(ctx, "DELETE FROM dropdown_options WHERE category = ?", category)
	}
	if err != nil {
		return fmt.Errorf("invalidating dropdown %q: %w", category, err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (c *DropdownCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.store.db.ExecContext(ctx,
		"DELETE FROM dropdown_options WHERE expires_at != 0 AND expires_at <= ?", c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning dropdowns: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying store.
func (c *DropdownCache) Close() error {
	return c.store.Close()
}
