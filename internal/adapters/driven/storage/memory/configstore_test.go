package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set(domain.KeyBaseURL, "http://his.local/api"))
	require.NoError(t, store.Set(domain.KeySuggestLimit, 8))
	require.NoError(t, store.Set(domain.KeyPreserveZero, true))

	assert.Equal(t, "http://his.local/api", store.GetString(domain.KeyBaseURL))
	assert.Equal(t, 8, store.GetInt(domain.KeySuggestLimit))
	assert.True(t, store.GetBool(domain.KeyPreserveZero))

	_, ok := store.Get(domain.KeyRedisAddr)
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "text"))

	assert.Equal(t, 0, store.GetInt("k"))
	assert.False(t, store.GetBool("k"))

	require.NoError(t, store.Set("n", int64(7)))
	assert.Equal(t, 7, store.GetInt("n"))
	require.NoError(t, store.Set("f", 2.0))
	assert.Equal(t, 2, store.GetInt("f"))
	assert.Equal(t, "", store.GetString("f"))
}

func TestConfigStore_Delete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set(domain.KeyAuthToken, "tok"))

	require.NoError(t, store.Delete(domain.KeyAuthToken))
	assert.Equal(t, "", store.GetString(domain.KeyAuthToken))

	assert.NoError(t, store.Delete("missing"))
}

func TestConfigStore_NoopPersistence(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("key", i)
			_ = store.GetInt("key")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("key")
	assert.True(t, ok)
}
