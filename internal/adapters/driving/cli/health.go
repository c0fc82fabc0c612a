package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage connectivity",
	Long: `Ping the configured storage and report whether it is reachable and migrated.
Exits non-zero when storage is degraded.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply storage schema migrations",
	Long: `Create or upgrade the document_chunks table, its indexes and the trigger that
maintains the full-text search representation. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(migrateCmd)
}

type healthOutput struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	SearchType string `json:"search_type"`
	Error      string `json:"error,omitempty"`
}

func runHealth(cmd *cobra.Command, _ []string) error {
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	report := svc.Health.Check(cmd.Context())
	out := healthOutput{
		Status:     report.Status(),
		Database:   report.Database(),
		SearchType: report.Driver.SearchType(),
	}
	if report.Err != nil {
		out.Error = report.Err.Error()
	}

	if healthJSON {
		if err := printJSON(cmd, out); err != nil {
			return err
		}
	} else {
		st := stylesFor(cmd.OutOrStdout())
		status := st.Success.Render(out.Status)
		if !report.Healthy {
			status = st.Error.Render(out.Status)
		}
		cmd.Printf("Status:      %s\n", status)
		cmd.Printf("Database:    %s\n", out.Database)
		cmd.Printf("Search type: %s\n", out.SearchType)
		if out.Error != "" {
			cmd.Printf("Error:       %s\n", st.Muted.Render(out.Error))
		}
	}

	if !report.Healthy {
		return errors.New("storage is degraded")
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Migrator == nil {
		cmd.Printf("%s storage has no schema to migrate\n", svc.Settings.Storage.Driver)
		return nil
	}

	n, err := svc.Migrator.Migrate(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if n == 0 {
		cmd.Println("Schema is up to date.")
		return nil
	}
	cmd.Printf("Applied %d migration(s).\n", n)
	return nil
}
