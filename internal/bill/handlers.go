package bill

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/bill-extractor/internal/extraction"
	"github.com/zombor/bill-extractor/internal/scanning"
)

// tokenUsage is always zero; OCR engines report no token counts
type tokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type extractRequest struct {
	Document string `json:"document"`
}

type extractData struct {
	extraction.Result
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

type extractResponse struct {
	IsSuccess  bool         `json:"is_success"`
	TokenUsage tokenUsage   `json:"token_usage"`
	Data       *extractData `json:"data,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes {"error": message} with CORS headers set
func writeJSONError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// statusFor maps a processing error to the HTTP status the caller sees
func statusFor(err error) int {
	if errors.Is(err, ErrFetch) || errors.Is(err, scanning.ErrUnsupportedFormat) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtractBillData fetches a document by URL and returns its line items
func (s *Server) handleExtractBillData(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		setCORSHeaders(w)
		writeJSON(w, http.StatusBadRequest, extractResponse{Error: "Invalid request body"})
		return
	}
	req.Document = strings.TrimSpace(req.Document)
	if req.Document == "" {
		setCORSHeaders(w)
		writeJSON(w, http.StatusBadRequest, extractResponse{Error: "document is required"})
		return
	}

	e, err := s.service.Process(r.Context(), req.Document)
	if err != nil {
		slog.Error("Error extracting bill data", "document", req.Document, "error", err)
		setCORSHeaders(w)
		writeJSON(w, statusFor(err), extractResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		IsSuccess: true,
		Data: &extractData{
			Result:                e.Result,
			ProcessingTimeSeconds: e.ProcessingSeconds,
		},
	})
}

// handleListExtractions returns a list of all extractions
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	extractions, err := s.service.ListExtractions()
	if err != nil {
		slog.Error("Error listing extractions", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if extractions == nil {
		extractions = []*Extraction{}
	}
	writeJSON(w, http.StatusOK, extractions)
}

// handleUploadExtraction extracts an uploaded document
func (s *Server) handleUploadExtraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxDocumentSize+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errorMsg = "File is too large"
		}
		writeJSONError(w, http.StatusBadRequest, errorMsg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	if header.Size > s.maxDocumentSize {
		writeJSONError(w, http.StatusBadRequest, "File is too large")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExt(header.Filename)
	}

	e, err := s.service.ProcessUpload(r.Context(), header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error processing upload", "filename", header.Filename, "error", err)
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// contentTypeFromExt guesses a MIME type for uploads sent without one
func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleGetExtraction returns a single extraction
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	e, err := s.service.GetExtraction(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		corsError(w, "Extraction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error getting extraction", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleGetExtractionFile returns the source document of an extraction
func (s *Server) handleGetExtractionFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetExtractionFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteExtraction deletes an extraction
func (s *Server) handleDeleteExtraction(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteExtraction(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		corsError(w, "Extraction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error deleting extraction", "error", err)
		corsError(w, "Error deleting extraction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
