package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables overriding stored settings.
const (
	EnvBaseURL      = "HIS_BASE_URL"
	EnvCacheBackend = "HIS_CACHE_BACKEND"
	EnvRedisAddr    = "HIS_REDIS_ADDR"
	EnvSchemaDir    = "HIS_SCHEMA_DIR"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKinds lists the keys Set accepts.
var settingKinds = map[string]settingKind{
	domain.KeyBaseURL:         kindString,
	domain.KeyRequestTimeout:  kindInt,
	domain.KeyRateLimit:       kindFloat,
	domain.KeySuggestDebounce: kindInt,
	domain.KeyBlurGrace:       kindInt,
	domain.KeySuggestLimit:    kindInt,
	domain.KeyPreserveZero:    kindBool,
	domain.KeySchemaDir:       kindString,
	domain.KeyCacheBackend:    kindString,
	domain.KeyCacheTTL:        kindInt,
	domain.KeyRedisAddr:       kindString,
}

// SettingKeys returns the keys accepted by Set, sorted.
func SettingKeys() []string {
	return []string{
		domain.KeyCacheBackend,
		domain.KeyRedisAddr,
		domain.KeyCacheTTL,
		domain.KeyBlurGrace,
		domain.KeyPreserveZero,
		domain.KeySchemaDir,
		domain.KeySuggestDebounce,
		domain.KeySuggestLimit,
		domain.KeyBaseURL,
		domain.KeyRateLimit,
		domain.KeyRequestTimeout,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Environment variables take
// precedence over the config file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		BaseURL:         strings.TrimRight(s.getString(domain.KeyBaseURL, EnvBaseURL, ""), "/"),
		RequestTimeout:  s.getDuration(domain.KeyRequestTimeout, time.Second, defaults.RequestTimeout),
		RateLimit:       s.getFloat(domain.KeyRateLimit, defaults.RateLimit),
		SuggestDebounce: s.getDuration(domain.KeySuggestDebounce, time.Millisecond, defaults.SuggestDebounce),
		BlurGrace:       s.getDuration(domain.KeyBlurGrace, time.Millisecond, defaults.BlurGrace),
		SuggestLimit:    s.getInt(domain.KeySuggestLimit, defaults.SuggestLimit),
		PreserveZero:    s.configStore.GetBool(domain.KeyPreserveZero),
		SchemaDir:       s.getString(domain.KeySchemaDir, EnvSchemaDir, ""),
		CacheBackend:    domain.CacheBackend(s.getString(domain.KeyCacheBackend, EnvCacheBackend, string(defaults.CacheBackend))),
		CacheTTL:        s.getDuration(domain.KeyCacheTTL, time.Minute, defaults.CacheTTL),
		RedisAddr:       s.getString(domain.KeyRedisAddr, EnvRedisAddr, ""),
	}

	if !settings.CacheBackend.IsValid() {
		settings.CacheBackend = defaults.CacheBackend
	}

	return settings, nil
}

// Set parses and stores a single setting. The resulting settings must pass
// validation or nothing is stored.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	value = strings.TrimSpace(value)
	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		parsed = value
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	settings, err := s.Get()
	if err == nil {
		err = s.Validate(settings)
	}
	if err != nil {
		if existed {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Delete(key)
		}
		return err
	}
	return nil
}

// Validate checks a settings value.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are nil", domain.ErrInvalidInput)
	}
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, ", "))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, env, fallback string) string {
	if env != "" {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			return v
		}
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func (s *SettingsService) getDuration(key string, unit, fallback time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return time.Duration(s.configStore.GetInt(key)) * unit
}

// ResolverConfigFrom returns the resolver tuning of the settings.
func ResolverConfigFrom(settings *domain.AppSettings) ResolverConfig {
	return ResolverConfig{
		Debounce:  settings.SuggestDebounce,
		BlurGrace: settings.BlurGrace,
		Limit:     settings.SuggestLimit,
	}
}
