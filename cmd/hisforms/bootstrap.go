package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/auth"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/config/file"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/his"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/storage/memory"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/storage/redis"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driven/storage/sqlite"
	"github.com/Tabrezhira/sobha-his-forms/internal/adapters/driving/cli"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/services"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// EnvRedisPassword holds the redis password when cache.backend is redis.
const EnvRedisPassword = "HIS_REDIS_PASSWORD"

const redisDialTimeout = 3 * time.Second

// bootstrap wires the driven adapters into the services used by the commands.
func bootstrap(opts cli.BootstrapOptions) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	configDir := filepath.Dir(configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}
	if err := settingsService.Validate(settings); err != nil && !errors.Is(err, domain.ErrBaseURLUnset) {
		logger.Warn("settings: %v", err)
	}

	schemaDir := settings.SchemaDir
	if schemaDir == "" {
		schemaDir = filepath.Join(configDir, file.SchemaDirName)
	}
	schemas := file.NewSchemaStore(schemaDir)

	var (
		records     driven.RecordStore
		patients    driven.PatientDirectory
		suggestions driven.SuggestionSource
		dropdowns   driven.DropdownSource
	)
	if settings.BaseURL != "" {
		client, err := his.NewClient(his.Options{
			BaseURL:   settings.BaseURL,
			Timeout:   settings.RequestTimeout,
			RateLimit: settings.RateLimit,
			Tokens:    auth.NewTokenProvider(configStore, false),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("backend client: %w", err)
		}
		records = client.Records()
		patients = client.Patients()
		suggestions = client
		dropdowns = client
		logger.Debug("backend %s", client.BaseURL())
	} else {
		logger.Debug("no backend configured, remote features disabled")
	}

	cache, err := openCache(settings, configDir)
	if err != nil {
		return nil, nil, err
	}

	normalizer := services.NewNormalizer(services.NormalizerOptions{PreserveZero: settings.PreserveZero})
	formService, err := services.NewFormService(schemas, services.FormDeps{
		Records:    records,
		Patients:   patients,
		Normalizer: normalizer,
	}, services.FormOptions{})
	if err != nil {
		cache.Close() //nolint:errcheck
		return nil, nil, err
	}

	s := &cli.Services{
		Forms:       formService,
		Suggestions: services.NewSuggestionService(suggestions, services.ResolverConfigFrom(settings)),
		Records:     services.NewRecordService(formService, records),
		Patients:    services.NewPatientService(patients),
		Dropdowns:   services.NewDropdownService(dropdowns, cache, settings.CacheTTL),
		Session:     services.NewSessionService(configStore),
		Settings:    settingsService,
		Schemas:     schemas,
		Watch: func(ctx context.Context) error {
			return configStore.Watch(ctx, func() {
				if err := formService.Reload(schemas); err != nil {
					logger.Warn("reload forms: %v", err)
				}
			})
		},
	}

	cleanup := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing cache: %v", err)
		}
	}
	return s, cleanup, nil
}

// openCache opens the dropdown cache selected by cache.backend.
// Redis and sqlite failures fall back to the in-memory cache.
func openCache(settings *domain.AppSettings, configDir string) (driven.DropdownCache, error) {
	switch settings.CacheBackend {
	case domain.CacheRedis:
		if settings.RedisAddr == "" {
			return nil, fmt.Errorf("%w: %s is required for the redis cache", domain.ErrInvalidInput, domain.KeyRedisAddr)
		}
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		c, err := redis.NewDropdownCache(ctx, settings.RedisAddr, os.Getenv(EnvRedisPassword))
		if err != nil {
			logger.Warn("redis cache unavailable, using memory: %v", err)
			return memory.NewDropdownCache(), nil
		}
		return c, nil

	case domain.CacheSQLite:
		store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
		if err != nil {
			logger.Warn("sqlite cache unavailable, using memory: %v", err)
			return memory.NewDropdownCache(), nil
		}
		return store.DropdownCache(), nil

	default:
		return memory.NewDropdownCache(), nil
	}
}
