package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

var (
	batchMetadata string
	batchJSON     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir | path...]",
	Short: "Ingest a directory or a list of documents",
	Long: `Ingest many documents concurrently.

Given a single directory, every supported file below it is ingested; hidden
files and directories are skipped. Otherwise each argument is ingested as a
file path. One failure never stops the others; the command exits non-zero
when any document failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest documents as they change",
	Long: `Watch a directory tree and ingest supported files when they are created or
modified. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchMetadata, "metadata", "m", "", "JSON object attached to every chunk")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the report as JSON")
	watchCmd.Flags().StringVarP(&batchMetadata, "metadata", "m", "", "JSON object attached to every chunk")
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
}

// batchResult mirrors one entry of the HTTP batch response.
type batchResult struct {
	URI     string `json:"uri"`
	Success bool   `json:"success"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

type batchOutput struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []batchResult `json:"results"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	metadata, err := parseMetadataFlag(batchMetadata)
	if err != nil {
		return err
	}
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	var report *driving.BatchReport
	if len(args) == 1 && isDir(args[0]) {
		report, err = svc.Batch.IngestDir(cmd.Context(), args[0], metadata)
	} else {
		report, err = svc.Batch.IngestPaths(cmd.Context(), args, metadata)
	}
	if report == nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		if jerr := printJSON(cmd, toBatchOutput(report)); jerr != nil {
			return jerr
		}
	} else {
		printBatchReport(cmd, report)
	}

	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d documents failed: %w", report.Failed(), report.Total(), report.Err())
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	metadata, err := parseMetadataFlag(batchMetadata)
	if err != nil {
		return err
	}
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Printf("%s %s (Ctrl+C to stop)\n", st.Title.Render("Watching"), args[0])
	return svc.Batch.WatchDir(cmd.Context(), args[0], metadata, func(item driving.BatchItem) {
		printItem(cmd, st, item)
	})
}

func printBatchReport(cmd *cobra.Command, report *driving.BatchReport) {
	st := stylesFor(cmd.OutOrStdout())
	for _, item := range report.Items {
		printItem(cmd, st, item)
	}
	cmd.Println()
	cmd.Printf("%s %d total, %d successful, %d failed in %s\n",
		st.Title.Render("Summary:"), report.Total(), report.Successful(), report.Failed(),
		report.Elapsed.Round(time.Millisecond))
}

func printItem(cmd *cobra.Command, st styles, item driving.BatchItem) {
	if item.Err != nil {
		cmd.Printf("  %s %s: %v\n", st.Error.Render("FAIL"), item.URI, item.Err)
		return
	}
	cmd.Printf("  %s %s %s\n", st.Success.Render("OK  "), item.URI,
		st.Muted.Render(fmt.Sprintf("(%d chunks)", item.Chunks)))
}

func toBatchOutput(report *driving.BatchReport) batchOutput {
	out := batchOutput{
		Total:      report.Total(),
		Successful: report.Successful(),
		Failed:     report.Failed(),
		Results:    make([]batchResult, len(report.Items)),
	}
	for i, item := range report.Items {
		out.Results[i] = batchResult{URI: item.URI, Success: item.Success(), Chunks: item.Chunks}
		if item.Err != nil {
			out.Results[i].Error = item.Err.Error()
		}
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
