package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miramuse/invoice-studio/internal/capture"
	"github.com/miramuse/invoice-studio/internal/logo"
)

// maxLogoSize caps logo uploads; logos are embedded as data URIs so
// oversized files would bloat every render.
const maxLogoSize = int64(10 << 20) // 10MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a JSON error body so the editor UI can show the text
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the editor UI
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handlePreview serves the live render surface for the editor's iframe
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	html, err := s.service.RenderPreview()
	if err != nil {
		slog.Error("Error rendering preview", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// handleGetInvoice returns the current invoice record
func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Current())
}

// handleReplaceInvoice installs a complete replacement record
func (s *Server) handleReplaceInvoice(w http.ResponseWriter, r *http.Request) {
	var data InvoiceData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.service.Replace(data))
}

// handleGenerateNumber replaces the invoice number with a random one
func (s *Server) handleGenerateNumber(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.GenerateInvoiceNumber())
}

// handleUploadLogo accepts a logo file and stores it as a data URI
func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxLogoSize {
		jsonError(w, "File is too large. Maximum size is 10MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading logo data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".gif":
			contentType = "image/gif"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic", ".heif":
			contentType = "image/heic"
		default:
			contentType = "application/octet-stream"
		}
	}

	uri, err := logo.DataURI(data, contentType)
	if err != nil {
		slog.Error("Error converting logo", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, s.service.SetLogo(uri))
}

// handleClearLogo removes the logo from the current record
func (s *Server) handleClearLogo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ClearLogo())
}

// handleExport runs the capture pipeline and streams the PDF. Both
// export controls in the UI resolve to this one endpoint, so the
// pipeline's busy flag is the single concurrency guard for both.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	record, artifact, err := s.service.ExportCurrentInvoice(r.Context())
	if err != nil {
		var capErr *capture.CaptureError
		var encErr *capture.EncodingError
		switch {
		case errors.Is(err, capture.ErrExportInProgress):
			jsonError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, capture.ErrElementNotFound):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.As(err, &capErr), errors.As(err, &encErr):
			jsonError(w, "Failed to generate PDF: "+err.Error(), http.StatusBadGateway)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(artifact.Len()))
	w.Header().Set("X-Export-ID", record.ID)
	if _, err := artifact.WriteTo(w); err != nil {
		slog.Error("Error writing artifact", "error", err)
	}
}

// handleListExports returns the export history
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListExports()
	if err != nil {
		slog.Error("Error listing exports", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if records == nil {
		records = []*ExportRecord{}
	}
	writeJSON(w, records)
}

// handleDeleteExport removes a past export from the history
func (s *Server) handleDeleteExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Export ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteExport(id); err != nil {
		corsError(w, "Error deleting export", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetExportFile re-serves a previously generated PDF
func (s *Server) handleGetExportFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Export ID required", http.StatusBadRequest)
		return
	}
	data, record, err := s.service.GetExportFile(id)
	if err != nil {
		corsError(w, "Export not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	w.Write(data)
}

// handleExtract sends pasted text to the extraction adapter
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "Input text is required", http.StatusBadRequest)
		return
	}

	fields, err := s.service.ExtractRecipient(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrExtractorNotConfigured) {
			jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, fields)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
