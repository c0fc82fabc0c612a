package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// stdinURI is the document URI for text read from standard input.
const stdinURI = "direct_input"

var (
	ingestURI      string
	ingestFormat   string
	ingestCharset  string
	ingestMetadata string
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|-]",
	Short: "Ingest a single document",
	Long: `Normalise, chunk and store one document.

The path is read from the local filesystem and its format is taken from the
file extension (.txt, .md, .html). Use "-" to read text from standard input;
--uri then names the document (default "direct_input").

Either every chunk of the document is stored or, on failure, none is.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURI, "uri", "", "document URI for standard input")
	ingestCmd.Flags().StringVar(&ingestFormat, "format", "", "plaintext, markdown or html")
	ingestCmd.Flags().StringVar(&ingestCharset, "charset", "", "declared text encoding (default utf-8)")
	ingestCmd.Flags().StringVarP(&ingestMetadata, "metadata", "m", "", "JSON object attached to every chunk")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

// ingestOutput mirrors the HTTP and MCP ingestion responses.
type ingestOutput struct {
	Status        string  `json:"status"`
	DocumentURI   string  `json:"document_uri"`
	ChunksCreated int     `json:"chunks_created"`
	ElapsedMS     float64 `json:"elapsed_ms"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	metadata, err := parseMetadataFlag(ingestMetadata)
	if err != nil {
		return err
	}

	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	var out ingestOutput
	if args[0] == "-" {
		out, err = ingestStdin(cmd, svc, metadata)
	} else {
		out, err = ingestFile(cmd, svc, args[0], metadata)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return printJSON(cmd, out)
	}
	st := stylesFor(cmd.OutOrStdout())
	cmd.Printf("%s %s: %d chunks in %.1fms\n",
		st.Success.Render("Ingested"), out.DocumentURI, out.ChunksCreated, out.ElapsedMS)
	return nil
}

func ingestStdin(cmd *cobra.Command, svc *Services, metadata map[string]any) (ingestOutput, error) {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return ingestOutput{}, fmt.Errorf("reading standard input: %w", err)
	}
	if content == nil {
		content = []byte{}
	}
	uri := ingestURI
	if uri == "" {
		uri = stdinURI
	}

	result, err := svc.Ingest.Ingest(cmd.Context(), domain.RawDocument{
		URI:      uri,
		Content:  content,
		Format:   domain.Format(ingestFormat),
		Charset:  ingestCharset,
		Metadata: metadata,
	})
	if err != nil {
		return ingestOutput{}, err
	}
	return ingestOutput{
		Status:        string(result.Status),
		DocumentURI:   result.DocumentURI,
		ChunksCreated: result.ChunksCreated,
		ElapsedMS:     millis(result.Elapsed),
	}, nil
}

func ingestFile(cmd *cobra.Command, svc *Services, path string, metadata map[string]any) (ingestOutput, error) {
	if ingestFormat != "" || ingestCharset != "" {
		return ingestOutput{}, fmt.Errorf("%w: --format and --charset apply to standard input only", domain.ErrValidation)
	}

	report, err := svc.Batch.IngestPaths(cmd.Context(), []string{path}, metadata)
	if err != nil {
		return ingestOutput{}, err
	}
	item := report.Items[0]
	if item.Err != nil {
		return ingestOutput{}, item.Err
	}
	return ingestOutput{
		Status:        string(domain.StatusSuccess),
		DocumentURI:   item.URI,
		ChunksCreated: item.Chunks,
		ElapsedMS:     millis(report.Elapsed),
	}, nil
}

// parseMetadataFlag decodes a --metadata value. Unlike the HTTP surface,
// the CLI rejects malformed JSON.
func parseMetadataFlag(raw string) (map[string]any, error) {
	metadata := map[string]any{}
	if raw == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("%w: --metadata must be a JSON object: %w", domain.ErrValidation, err)
	}
	if metadata == nil {
		return nil, fmt.Errorf("%w: --metadata must be a JSON object", domain.ErrValidation)
	}
	return metadata, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
