package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/storage/memory"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func TestConfigTokenProvider_StoredToken(t *testing.T) {
	store := memory.NewConfigStore()
	p := NewConfigTokenProvider(store)
	p.getenv = func(string) string { return "" }

	_, err := p.GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.False(t, p.IsAuthenticated())

	require.NoError(t, store.Set(domain.KeyAuthToken, " abc "))
	token, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.True(t, p.IsAuthenticated())
}

func TestConfigTokenProvider_EnvOverride(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(domain.KeyAuthToken, "stored"))
	p := NewConfigTokenProvider(store)
	p.getenv = func(key string) string {
		if key == EnvToken {
			return "Bearer from-env"
		}
		return ""
	}

	token, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", token)
}

func TestNewTokenProvider(t *testing.T) {
	anon := NewTokenProvider(nil, true)
	token, err := anon.GetToken(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.True(t, anon.IsAuthenticated())

	_, ok := NewTokenProvider(memory.NewConfigStore(), false).(*ConfigTokenProvider)
	assert.True(t, ok)
}
