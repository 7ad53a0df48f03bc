package driven

import "context"

// TokenProvider provides bearer tokens for authenticated API calls.
type TokenProvider interface {
	// GetToken returns the current access token.
	// Returns domain.ErrAuthRequired when no token is configured.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
