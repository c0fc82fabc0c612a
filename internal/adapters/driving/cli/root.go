// Package cli provides the command-line interface for the ingestion service.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services are the driving ports the commands run against.
type Services struct {
	Settings domain.Settings
	Ingest   driving.IngestService
	Batch    driving.BatchService
	Health   driving.HealthService

	// Migrator is nil when the store has no schema.
	Migrator driving.MigrationService

	// Close releases storage and worker pools.
	Close func() error
}

// Factory builds services on demand so commands that only touch the
// configuration never open storage.
type Factory struct {
	// Settings opens the settings service for a config path. An empty path
	// selects the default location.
	Settings func(configPath string) (driving.SettingsService, error)

	// Services wires storage and the pipeline for resolved settings.
	Services func(ctx context.Context, settings domain.Settings) (*Services, error)
}

var (
	factory         Factory
	settingsService driving.SettingsService
	activeServices  *Services

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sercha-ingest",
	Short: "Normalise, chunk and store documents for full-text search",
	Long: `sercha-ingest turns raw documents into overlapping text chunks and stores
them with a full-text search index maintained by the database.

Documents are repaired for encoding defects, split recursively on paragraph,
line and word boundaries, and written atomically: either every chunk of a
document is stored or none is.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.sercha/ingest.toml)")
}

// SetFactory installs the service factory used by commands.
func SetFactory(f Factory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Services opened during the run are closed
// before it returns.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// configureLogging applies --verbose, then the configured level.
func configureLogging(_ *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
		return nil
	}
	settings, err := loadSettings()
	if err != nil {
		// Commands that need settings report the error themselves.
		return nil //nolint:nilerr
	}
	if level, err := logger.ParseLevel(settings.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return nil
}

func getSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	if factory.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	svc, err := factory.Settings(configPath)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService = svc
	return svc, nil
}

func loadSettings() (domain.Settings, error) {
	svc, err := getSettingsService()
	if err != nil {
		return domain.Settings{}, err
	}
	settings, err := svc.Get()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// getServices wires storage on first use.
func getServices(ctx context.Context) (*Services, error) {
	if activeServices != nil {
		return activeServices, nil
	}
	if factory.Services == nil {
		return nil, errors.New("services not configured")
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	svc, err := factory.Services(ctx, settings)
	if err != nil {
		return nil, err
	}
	activeServices = svc
	return svc, nil
}

func closeServices() {
	if activeServices == nil || activeServices.Close == nil {
		return
	}
	if err := activeServices.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	activeServices = nil
}
