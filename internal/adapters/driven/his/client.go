package his

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// HeaderRequestID carries a per-request UUID for backend log correlation.
	HeaderRequestID = "X-Request-ID"

	// maxBodySize caps how much of a response is read.
	maxBodySize = 8 << 20

	// maxErrorBody caps the body kept in a StatusError.
	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. https://his.example.com/api.
	BaseURL string

	// Timeout bounds each request. Zero disables the client-side timeout.
	Timeout time.Duration

	// RateLimit is the proactive request rate per second. Zero disables it.
	RateLimit float64

	// Tokens supplies the bearer token. Nil sends requests unauthenticated.
	Tokens driven.TokenProvider

	// Transport is the underlying round tripper. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the HIS portal backend.
type Client struct {
	base    string
	http    *http.Client
	limiter *RateLimiter
}

// NewClient creates a backend client.
// Returns domain.ErrBaseURLUnset when no base URL is given.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, domain.ErrBaseURLUnset
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", domain.ErrInvalidInput, opts.BaseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Tokens != nil {
		transport = &oauth2.Transport{
			Source: NewTokenSource(context.Background(), opts.Tokens),
			Base:   transport,
		}
	}

	return &Client{
		base: base,
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		limiter: NewRateLimiter(opts.RateLimit),
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string {
	return c.base
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.limiter
}

// do sends a request and decodes the (possibly enveloped) response into out.
// Non-2xx statuses become *domain.StatusError; 404 also matches
// domain.ErrNotFound and 401 domain.ErrAuthInvalid.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", op, err)
	}

	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Request(requestID, method, endpoint, 0, time.Since(start), err)
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	logger.Request(requestID, method, endpoint, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}

	if err := c.limiter.Observe(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapEnvelope(raw), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func statusError(op string, code int, raw []byte) error {
	body := strings.TrimSpace(string(raw))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	se := &domain.StatusError{Op: op, StatusCode: code, Body: body}

	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, se)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrAuthInvalid, se)
	default:
		return se
	}
}

// unwrapEnvelope returns the data member of a {success, data} body, or the
// body itself when it is not enveloped.
func unwrapEnvelope(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return trimmed
	}
	data, hasData := probe["data"]
	_, hasSuccess := probe["success"]
	if !hasData || !hasSuccess {
		return trimmed
	}
	return data
}

func resourcePath(resource string, id ...string) string {
	parts := []string{"", strings.Trim(resource, "/")}
	for _, p := range id {
		parts = append(parts, url.PathEscape(p))
	}
	return strings.Join(parts, "/")
}
