package services

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

type settingKind int

const (
	kindInt settingKind = iota
	kindFloat
	kindBool
	kindString
	kindDuration
)

// settingKey binds a config key and its optional environment override to a
// field of domain.Settings.
type settingKey struct {
	key   string
	env   string
	kind  settingKind
	apply func(s *domain.Settings, v any)
}

//nolint:gosec // G101: postgres.password is a key name, not a credential.
var settingKeys = []settingKey{
	{"chunking.chunk_size", "CHUNK_SIZE", kindInt, func(s *domain.Settings, v any) { s.Chunking.ChunkSize = v.(int) }},
	{"chunking.chunk_overlap", "CHUNK_OVERLAP", kindInt, func(s *domain.Settings, v any) { s.Chunking.ChunkOverlap = v.(int) }},
	{"storage.driver", "SERCHA_STORAGE_DRIVER", kindString, func(s *domain.Settings, v any) {
		s.Storage.Driver = domain.StorageDriver(v.(string))
	}},
	{"storage.sqlite_path", "SERCHA_SQLITE_PATH", kindString, func(s *domain.Settings, v any) { s.Storage.SQLitePath = v.(string) }},
	{"storage.max_conns", "", kindInt, func(s *domain.Settings, v any) { s.Storage.MaxConns = v.(int) }},
	{"storage.acquire_timeout", "", kindDuration, func(s *domain.Settings, v any) { s.Storage.AcquireTimeout = v.(time.Duration) }},
	{"storage.fail_fast", "", kindBool, func(s *domain.Settings, v any) { s.Storage.FailFast = v.(bool) }},
	{"postgres.host", "POSTGRES_HOST", kindString, func(s *domain.Settings, v any) { s.Storage.Postgres.Host = v.(string) }},
	{"postgres.port", "POSTGRES_PORT", kindInt, func(s *domain.Settings, v any) { s.Storage.Postgres.Port = v.(int) }},
	{"postgres.user", "POSTGRES_USER", kindString, func(s *domain.Settings, v any) { s.Storage.Postgres.User = v.(string) }},
	{"postgres.password", "POSTGRES_PASSWORD", kindString, func(s *domain.Settings, v any) { s.Storage.Postgres.Password = v.(string) }},
	{"postgres.database", "POSTGRES_DB", kindString, func(s *domain.Settings, v any) { s.Storage.Postgres.Database = v.(string) }},
	{"server.addr", "", kindString, func(s *domain.Settings, v any) { s.Server.Addr = v.(string) }},
	{"server.request_timeout", "", kindDuration, func(s *domain.Settings, v any) { s.Server.RequestTimeout = v.(time.Duration) }},
	{"server.max_upload_bytes", "", kindInt, func(s *domain.Settings, v any) { s.Server.MaxUploadBytes = int64(v.(int)) }},
	{"batch.workers", "", kindInt, func(s *domain.Settings, v any) { s.Batch.Workers = v.(int) }},
	{"batch.rate_per_second", "", kindFloat, func(s *domain.Settings, v any) { s.Batch.RatePerSecond = v.(float64) }},
	{"log.level", "SERCHA_LOG_LEVEL", kindString, func(s *domain.Settings, v any) { s.Log.Level = v.(string) }},
}

// SettingsService resolves domain.Settings from a config store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// If lookupEnv is nil, os.LookupEnv is used.
func NewSettingsService(configStore driven.ConfigStore, lookupEnv func(string) (string, bool)) *SettingsService {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   lookupEnv,
	}
}

// Get builds settings from defaults, stored keys and environment overrides.
// Mistyped stored values are ignored with a warning; malformed environment
// values are an error.
func (s *SettingsService) Get() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	for _, k := range settingKeys {
		raw, ok := s.configStore.Get(k.key)
		if !ok {
			continue
		}
		v, err := coerce(k.kind, raw)
		if err != nil {
			logger.Warn("config %s: %v, using default", k.key, err)
			continue
		}
		k.apply(&settings, v)
	}

	for _, k := range settingKeys {
		if k.env == "" {
			continue
		}
		raw, ok := s.lookupEnv(k.env)
		if !ok || raw == "" {
			continue
		}
		v, err := parse(k.kind, raw)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, k.env, err)
		}
		k.apply(&settings, v)
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Set parses value for key and persists it when the result still validates.
func (s *SettingsService) Set(key, value string) error {
	k, ok := findSettingKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}
	v, err := parse(k.kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	k.apply(&settings, v)
	if err := settings.Validate(); err != nil {
		return err
	}

	// Durations are persisted in their string form.
	if d, ok := v.(time.Duration); ok {
		v = d.String()
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	sort.Strings(keys)
	return keys
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func findSettingKey(key string) (settingKey, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k, true
		}
	}
	return settingKey{}, false
}

// coerce converts a decoded TOML value to the key's Go type.
func coerce(kind settingKind, raw any) (any, error) {
	switch kind {
	case kindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == math.Trunc(v) {
				return int(v), nil
			}
		case string:
			return parse(kind, v)
		}
	case kindFloat:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		case string:
			return parse(kind, v)
		}
	case kindBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return parse(kind, v)
		}
	case kindString:
		if v, ok := raw.(string); ok {
			return v, nil
		}
	case kindDuration:
		switch v := raw.(type) {
		case string:
			return parse(kind, v)
		case int64:
			return time.Duration(v) * time.Second, nil
		case int:
			return time.Duration(v) * time.Second, nil
		}
	}
	return nil, fmt.Errorf("unexpected value %v (%T)", raw, raw)
}

// parse converts a string from the environment or the command line.
func parse(kind settingKind, raw string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindDuration:
		if n, err := strconv.Atoi(raw); err == nil {
			return time.Duration(n) * time.Second, nil
		}
		return time.ParseDuration(raw)
	default:
		return raw, nil
	}
}
