package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_VerboseSetsDebug(t *testing.T) {
	setupTestServices(t)
	defer logger.SetVerbose(false)

	_, err := run("--verbose", "version")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestGetServices_UsesFactory(t *testing.T) {
	oldFactory, oldServices, oldSettings := factory, activeServices, settingsService
	defer func() { factory, activeServices, settingsService = oldFactory, oldServices, oldSettings }()
	activeServices, settingsService = nil, nil

	closed := false
	var gotPath string
	SetFactory(Factory{
		Settings: func(path string) (driving.SettingsService, error) {
			gotPath = path
			return &staticSettings{settings: domain.DefaultSettings()}, nil
		},
		Services: func(_ context.Context, s domain.Settings) (*Services, error) {
			return &Services{Settings: s, Close: func() error { closed = true; return nil }}, nil
		},
	})
	configPath = "/tmp/custom.toml"
	defer func() { configPath = "" }()

	svc, err := getServices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", gotPath)
	assert.Equal(t, 800, svc.Settings.Chunking.ChunkSize)

	again, err := getServices(context.Background())
	require.NoError(t, err)
	assert.Same(t, svc, again)

	closeServices()
	assert.True(t, closed)
	assert.Nil(t, activeServices)
}

func TestGetServices_Unconfigured(t *testing.T) {
	oldFactory, oldServices, oldSettings := factory, activeServices, settingsService
	defer func() { factory, activeServices, settingsService = oldFactory, oldServices, oldSettings }()
	factory, activeServices, settingsService = Factory{}, nil, nil

	_, err := getServices(context.Background())
	assert.Error(t, err)
}

func TestGetServices_SettingsError(t *testing.T) {
	oldFactory, oldServices, oldSettings := factory, activeServices, settingsService
	defer func() { factory, activeServices, settingsService = oldFactory, oldServices, oldSettings }()
	activeServices = nil
	settingsService = &staticSettings{err: errors.New("bad toml")}
	factory = Factory{Services: func(context.Context, domain.Settings) (*Services, error) {
		t.Fatal("services must not be built")
		return nil, nil
	}}

	_, err := getServices(context.Background())
	assert.ErrorContains(t, err, "bad toml")
}

// staticSettings is a fixed driving.SettingsService.
type staticSettings struct {
	settings domain.Settings
	err      error
}

func (s *staticSettings) Get() (domain.Settings, error) { return s.settings, s.err }
func (s *staticSettings) Set(string, string) error      { return s.err }
func (s *staticSettings) Keys() []string                { return nil }
func (s *staticSettings) Path() string                  { return "" }
