package domain

import "time"

const unknownDescription = "Unknown"

// CacheBackend selects where dropdown option lists are cached.
type CacheBackend string

// Available cache backends.
const (
	// CacheMemory keeps options for the lifetime of the process.
	CacheMemory CacheBackend = "memory"

	// CacheSQLite persists options in the local data directory.
	CacheSQLite CacheBackend = "sqlite"

	// CacheRedis shares options between workstations.
	CacheRedis CacheBackend = "redis"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheMemory, CacheSQLite, CacheRedis:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b CacheBackend) Description() string {
	switch b {
	case CacheMemory:
		return "Memory (per process)"
	case CacheSQLite:
		return "SQLite (local disk)"
	case CacheRedis:
		return "Redis (shared)"
	default:
		return unknownDescription
	}
}

// Default tuning values.
const (
	DefaultSuggestDebounce = 250 * time.Millisecond
	DefaultBlurGrace       = 150 * time.Millisecond
	DefaultRequestTimeout  = 30 * time.Second
	DefaultRateLimit       = 10.0
	DefaultCacheTTL        = time.Hour
)

// Configuration keys in the config store.
const (
	KeyBaseURL         = "his.base_url"
	KeyRequestTimeout  = "his.request_timeout_seconds"
	KeyRateLimit       = "his.rate_limit_per_second"
	KeySuggestDebounce = "forms.suggest_debounce_ms"
	KeyBlurGrace       = "forms.blur_grace_ms"
	KeySuggestLimit    = "forms.suggest_limit"
	KeyPreserveZero    = "forms.preserve_zero"
	KeySchemaDir       = "forms.schema_dir"
	KeyCacheBackend    = "cache.backend"
	KeyCacheTTL        = "cache.ttl_minutes"
	KeyRedisAddr       = "cache.redis_addr"
	KeyAuthToken       = "auth.token"
)

// AppSettings holds the effective application configuration.
type AppSettings struct {
	BaseURL         string        `validate:"omitempty,url"`
	RequestTimeout  time.Duration `validate:"gte=0"`
	RateLimit       float64       `validate:"gte=0"`
	SuggestDebounce time.Duration `validate:"gte=0"`
	BlurGrace       time.Duration `validate:"gte=0"`
	SuggestLimit    int           `validate:"gte=1,lte=50"`
	PreserveZero    bool
	SchemaDir       string
	CacheBackend    CacheBackend  `validate:"required,oneof=memory sqlite redis"`
	CacheTTL        time.Duration `validate:"gte=0"`
	RedisAddr       string        `validate:"required_if=CacheBackend redis"`
}

// DefaultAppSettings returns settings with default values.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RequestTimeout:  DefaultRequestTimeout,
		RateLimit:       DefaultRateLimit,
		SuggestDebounce: DefaultSuggestDebounce,
		BlurGrace:       DefaultBlurGrace,
		SuggestLimit:    DefaultSuggestionLimit,
		CacheBackend:    CacheMemory,
		CacheTTL:        DefaultCacheTTL,
	}
}

// RemoteEnabled reports whether a backend is configured.
func (s AppSettings) RemoteEnabled() bool {
	return s.BaseURL != ""
}
