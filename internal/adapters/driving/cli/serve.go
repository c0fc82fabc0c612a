package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP ingestion server",
	Long: `Start the HTTP server.

Endpoints:
  POST /ingest        multipart file, text_content or document_uri, plus metadata
  POST /ingest/batch  JSON array of server-side paths
  GET  /health        storage connectivity`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8001)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	cfg := svc.Settings.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	server, err := api.NewServer(&api.Ports{
		Ingest: svc.Ingest,
		Batch:  svc.Batch,
		Health: svc.Health,
	}, cfg)
	if err != nil {
		return err
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Printf("%s on %s (%s storage)\n", st.Title.Render("Serving"), cfg.Addr, svc.Settings.Storage.Driver)
	return server.Run(cmd.Context())
}
