package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService stores the bearer token and decodes its claims.
// Signatures are verified by the backend, never here.
type SessionService struct {
	configStore driven.ConfigStore
	now         func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(configStore driven.ConfigStore) *SessionService {
	return &SessionService{configStore: configStore, now: time.Now}
}

// Login stores a token and returns the session it describes.
func (s *SessionService) Login(token string) (*domain.Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}
	session, err := DecodeSession(token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, domain.ErrAuthExpired
	}
	if err := s.configStore.Set(domain.KeyAuthToken, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return session, nil
}

// Logout removes the stored token.
func (s *SessionService) Logout() error {
	if err := s.configStore.Delete(domain.KeyAuthToken); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Current returns the active session.
func (s *SessionService) Current() (*domain.Session, error) {
	token := s.configStore.GetString(domain.KeyAuthToken)
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	session, err := DecodeSession(token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return session, domain.ErrAuthExpired
	}
	return session, nil
}

// DecodeSession reads the claims of a JWT without verifying it.
func DecodeSession(token string) (*domain.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	}

	session := &domain.Session{Token: token}
	session.Subject, _ = claims.GetSubject()
	if session.Subject == "" {
		session.Subject = claimString(claims, "id", "_id", "empNo")
	}
	session.Name = claimString(claims, "name", "username", "email")
	session.Role = claimString(claims, "role")
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session, nil
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
