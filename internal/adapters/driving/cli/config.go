package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the configuration file.

Environment variables (CHUNK_SIZE, CHUNK_OVERLAP, POSTGRES_HOST, ...) override
values from the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Validate and persist a configuration value.

Run "config keys" to list the recognised keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())
	section := func(name string) {
		cmd.Println()
		cmd.Println(st.Title.Render("[" + name + "]"))
	}

	cmd.Printf("Config file: %s\n", svc.Path())

	section("Chunking")
	cmd.Printf("  Chunk size:    %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.Chunking.ChunkOverlap)

	section("Storage")
	cmd.Printf("  Driver:          %s\n", settings.Storage.Driver.Description())
	switch settings.Storage.Driver {
	case domain.StorageSQLite:
		path := settings.Storage.SQLitePath
		if path == "" {
			path = "(default)"
		}
		cmd.Printf("  SQLite path:     %s\n", path)
	case domain.StoragePostgres:
		pg := settings.Storage.Postgres
		cmd.Printf("  PostgreSQL:      %s@%s:%d/%s\n", pg.User, pg.Host, pg.Port, pg.Database)
		cmd.Printf("  Password:        %s\n", maskSecret(pg.Password))
	}
	cmd.Printf("  Max connections: %d\n", settings.Storage.MaxConns)
	cmd.Printf("  Acquire timeout: %s\n", settings.Storage.AcquireTimeout)
	cmd.Printf("  Fail fast:       %t\n", settings.Storage.FailFast)

	section("Server")
	cmd.Printf("  Address:         %s\n", settings.Server.Addr)
	cmd.Printf("  Request timeout: %s\n", settings.Server.RequestTimeout)
	cmd.Printf("  Max upload:      %d bytes\n", settings.Server.MaxUploadBytes)

	section("Batch")
	cmd.Printf("  Workers:         %d\n", settings.Batch.Workers)
	if settings.Batch.RatePerSecond > 0 {
		cmd.Printf("  Rate:            %g/s\n", settings.Batch.RatePerSecond)
	} else {
		cmd.Printf("  Rate:            unlimited\n")
	}

	section("Log")
	cmd.Printf("  Level:           %s\n", settings.Log.Level)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

// maskSecret shows only the last four characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
