package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// DirectInputURI identifies text submitted without a document URI.
const DirectInputURI = "direct_input"

// IngestResponse is the body of a successful POST /ingest.
type IngestResponse struct {
	Success       bool    `json:"success"`
	Status        string  `json:"status"`
	DocumentURI   string  `json:"document_uri"`
	ChunksCreated int     `json:"chunks_created"`
	ElapsedMS     float64 `json:"elapsed_ms"`
	Message       string  `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// BatchResult is the outcome for one path of POST /ingest/batch.
type BatchResult struct {
	URI     string `json:"uri"`
	Success bool   `json:"success"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse is the body of POST /ingest/batch.
type BatchResponse struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []BatchResult `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	SearchType string `json:"search_type"`
}

// handleIngest accepts text_content, an uploaded file, or a server-side
// document_uri, in that order of precedence.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := parseForm(r, s.cfg.MaxUploadBytes); err != nil {
		writeError(w, err)
		return
	}

	metadata := parseMetadata(r.FormValue("metadata"))
	documentURI := strings.TrimSpace(r.FormValue("document_uri"))
	textContent := r.FormValue("text_content")

	switch {
	case textContent != "":
		uri := documentURI
		if uri == "" {
			uri = DirectInputURI
		}
		s.ingestRaw(r.Context(), w, domain.RawDocument{
			URI:      uri,
			Content:  []byte(textContent),
			Format:   domain.Format(r.FormValue("format")),
			Charset:  r.FormValue("charset"),
			Metadata: metadata,
		})

	case hasFile(r):
		raw, err := readUpload(r, metadata)
		if err != nil {
			writeError(w, err)
			return
		}
		s.ingestRaw(r.Context(), w, *raw)

	case documentURI != "":
		s.ingestPath(r.Context(), w, documentURI, metadata)

	default:
		writeError(w, fmt.Errorf("%w: must provide file, document_uri, or text_content", domain.ErrValidation))
	}
}

func (s *Server) ingestRaw(ctx context.Context, w http.ResponseWriter, raw domain.RawDocument) {
	result, err := s.ports.Ingest.Ingest(ctx, raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IngestResponse{
		Success:       true,
		Status:        string(result.Status),
		DocumentURI:   result.DocumentURI,
		ChunksCreated: result.ChunksCreated,
		ElapsedMS:     float64(result.Elapsed.Microseconds()) / 1000,
		Message:       fmt.Sprintf("Successfully ingested %d chunks from %s", result.ChunksCreated, result.DocumentURI),
	})
}

func (s *Server) ingestPath(ctx context.Context, w http.ResponseWriter, path string, metadata map[string]any) {
	if s.ports.Batch == nil {
		writeError(w, fmt.Errorf("%w: document_uri ingestion is not enabled", domain.ErrValidation))
		return
	}
	report, err := s.ports.Batch.IngestPaths(ctx, []string{path}, metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	item := report.Items[0]
	if item.Err != nil {
		writeError(w, item.Err)
		return
	}
	writeJSON(w, http.StatusOK, IngestResponse{
		Success:       true,
		Status:        string(domain.StatusSuccess),
		DocumentURI:   path,
		ChunksCreated: item.Chunks,
		ElapsedMS:     float64(report.Elapsed.Microseconds()) / 1000,
		Message:       fmt.Sprintf("Successfully ingested %d chunks from %s", item.Chunks, path),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var uris []string
	if err := json.NewDecoder(r.Body).Decode(&uris); err != nil {
		writeError(w, fmt.Errorf("%w: body must be a JSON array of document URIs: %w", domain.ErrValidation, err))
		return
	}

	report, err := s.ports.Batch.IngestPaths(r.Context(), uris, nil)
	if err != nil {
		logger.Warn("batch interrupted: %v", err)
	}

	resp := BatchResponse{
		Total:      report.Total(),
		Successful: report.Successful(),
		Failed:     report.Failed(),
		Results:    make([]BatchResult, len(report.Items)),
	}
	for i, item := range report.Items {
		resp.Results[i] = BatchResult{URI: item.URI, Success: item.Success(), Chunks: item.Chunks}
		if item.Err != nil {
			resp.Results[i].Error = item.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.ports.Health.Check(r.Context())
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     report.Status(),
		Database:   report.Database(),
		SearchType: report.Driver.SearchType(),
	})
}

// parseForm accepts multipart and urlencoded bodies alike.
func parseForm(r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	err := r.ParseMultipartForm(maxBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: parsing form: %w", domain.ErrValidation, err)
	}
	return nil
}

func hasFile(r *http.Request) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File["file"]) > 0
}

// readUpload reads the uploaded file. Only text formats are accepted.
func readUpload(r *http.Request, metadata map[string]any) (*domain.RawDocument, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %w", domain.ErrValidation, err)
	}
	defer file.Close()

	format := domain.FormatFromExtension(header.Filename)
	if format == "" {
		return nil, fmt.Errorf("%w: %w: unsupported file type: %s", domain.ErrValidation, domain.ErrUnsupportedType, header.Filename)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %w", domain.ErrValidation, err)
	}
	if content == nil {
		content = []byte{}
	}

	metadata["filename"] = header.Filename
	return &domain.RawDocument{
		URI:      header.Filename,
		Content:  content,
		Format:   format,
		Charset:  r.FormValue("charset"),
		Metadata: metadata,
	}, nil
}

// parseMetadata decodes the metadata form field. Anything that is not a
// JSON object yields an empty map.
func parseMetadata(raw string) map[string]any {
	metadata := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return metadata
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil || metadata == nil {
		logger.Debug("ignoring invalid metadata %q: %v", raw, err)
		return map[string]any{}
	}
	return metadata
}

// statusFor maps an ingestion error to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrChunking):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	resp := ErrorResponse{Error: err.Error()}
	if c := domain.Category(err); c != nil {
		resp.Category = c.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}
