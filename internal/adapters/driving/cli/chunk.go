package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// previewWidth is the number of characters shown per chunk.
const previewWidth = 60

var (
	chunkFormat string
	chunkFull   bool
	chunkJSON   bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [path|-]",
	Short: "Preview how a document is chunked",
	Long: `Run normalisation and chunking on a document without storing anything.
Useful for tuning chunking.chunk_size and chunking.chunk_overlap.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunk,
}

func init() {
	chunkCmd.Flags().StringVar(&chunkFormat, "format", "", "plaintext, markdown or html")
	chunkCmd.Flags().BoolVar(&chunkFull, "full", false, "print the full text of every chunk")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(chunkCmd)
}

type chunkOutput struct {
	ChunkNum int    `json:"chunk_num"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	svc, err := getServices(cmd.Context())
	if err != nil {
		return err
	}

	uri := args[0]
	var content []byte
	if uri == "-" {
		uri = stdinURI
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(uri)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	if content == nil {
		content = []byte{}
	}

	chunks, err := svc.Ingest.Preview(cmd.Context(), domain.RawDocument{
		URI:     uri,
		Content: content,
		Format:  domain.Format(chunkFormat),
	})
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	if chunkJSON {
		out := make([]chunkOutput, len(chunks))
		for i, c := range chunks {
			out[i] = chunkOutput{ChunkNum: c.ChunkNum, Length: utf8.RuneCountInString(c.Text), Text: c.Text}
		}
		return printJSON(cmd, out)
	}

	st := stylesFor(cmd.OutOrStdout())
	cfg := svc.Settings.Chunking
	cmd.Printf("%s %d chunks (size %d, overlap %d)\n",
		st.Title.Render(uri+":"), len(chunks), cfg.ChunkSize, cfg.ChunkOverlap)
	for _, c := range chunks {
		length := utf8.RuneCountInString(c.Text)
		if chunkFull {
			cmd.Printf("\n%s\n%s\n", st.Muted.Render(fmt.Sprintf("--- chunk %d (%d chars) ---", c.ChunkNum, length)), c.Text)
			continue
		}
		cmd.Printf("  [%3d] %4d  %s\n", c.ChunkNum, length, st.Muted.Render(snippet(c.Text, previewWidth)))
	}
	return nil
}

// snippet returns the first n characters of s on one line.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
