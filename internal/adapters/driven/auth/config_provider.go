package auth

import (
	"context"
	"os"
	"strings"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
)

// EnvToken overrides the stored token, for scripted use.
const EnvToken = "HIS_TOKEN"

// Ensure ConfigTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ConfigTokenProvider)(nil)

// ConfigTokenProvider reads the bearer token saved by "auth login".
// The store is read on every call so a token written by another process
// (and reloaded by the config watcher) is used immediately.
type ConfigTokenProvider struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// NewConfigTokenProvider creates a token provider backed by the config store.
func NewConfigTokenProvider(store driven.ConfigStore) *ConfigTokenProvider {
	return &ConfigTokenProvider{
		store:  store,
		getenv: os.Getenv,
	}
}

// GetToken returns the environment token, else the stored token.
// Returns domain.ErrAuthRequired when neither is set.
func (p *ConfigTokenProvider) GetToken(_ context.Context) (string, error) {
	if token := p.token(); token != "" {
		return token, nil
	}
	return "", domain.ErrAuthRequired
}

// IsAuthenticated returns true if a token is available.
func (p *ConfigTokenProvider) IsAuthenticated() bool {
	return p.token() != ""
}

func (p *ConfigTokenProvider) token() string {
	if token := strings.TrimSpace(p.getenv(EnvToken)); token != "" {
		return strings.TrimPrefix(token, "Bearer ")
	}
	if p.store == nil {
		return ""
	}
	return strings.TrimSpace(p.store.GetString(domain.KeyAuthToken))
}

// NewTokenProvider returns the config-backed provider, or a NullTokenProvider
// when anonymous access is requested.
func NewTokenProvider(store driven.ConfigStore, anonymous bool) driven.TokenProvider {
	if anonymous {
		return NewNullTokenProvider()
	}
	return NewConfigTokenProvider(store)
}
