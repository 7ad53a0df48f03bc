package driving

import "github.com/Tabrezhira/sobha-his-forms/internal/core/domain"

// SessionService manages the stored bearer token.
type SessionService interface {
	// Login stores a token and returns the session it describes.
	Login(token string) (*domain.Session, error)

	// Logout removes the stored token.
	Logout() error

	// Current returns the active session.
	// Returns domain.ErrAuthRequired when no token is stored.
	Current() (*domain.Session, error)
}
