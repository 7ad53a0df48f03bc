package his

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// DefaultBackoff applies when a 429 carries no usable Retry-After.
	DefaultBackoff = 5 * time.Second

	// burstSize lets a form submit its patient sync and record back to back.
	burstSize = 4
)

// RateLimitError is returned when the backend answers 429.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("his: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Unwrap lets errors.Is match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// RateLimiter throttles requests proactively with a token bucket and
// reactively after a 429 response.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests.
// A non-positive rate disables proactive throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(limit, burstSize),
		now:    time.Now,
	}
}

// Wait blocks until a request may be sent.
// It honours any backoff recorded by Observe before taking a bucket token.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	now := r.now()
	r.mu.Unlock()

	if now.Before(retryAt) {
		timer := time.NewTimer(retryAt.Sub(now))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe inspects a response. A 429 records a backoff and returns a
// *RateLimitError; any other status returns nil.
func (r *RateLimiter) Observe(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.retryAt = now.Add(retryAfter(resp.Header.Get(HeaderRetryAfter), now))
	return &RateLimitError{RetryAt: r.retryAt}
}

// RetryAt returns the end of the current backoff, zero when none was recorded.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

func retryAfter(header string, now time.Time) time.Duration {
	if header == "" {
		return DefaultBackoff
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return DefaultBackoff
}
