package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/reportmd/internal/importer"
	"github.com/dgallion1/reportmd/internal/ir"
	"github.com/dgallion1/reportmd/internal/pipeline"
)

// handleRender converts a JSON report document to Markdown synchronously.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := ir.Decode(data)
	if err != nil {
		jsonError(w, "invalid document JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	markdown := s.renderTimed(doc)
	s.writeRendered(w, r, doc, markdown)
}

// handleRenderFile imports an uploaded file and returns its Markdown
// rendition synchronously.
func (s *Server) handleRenderFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := r.FormValue("title"); title != "" {
		ir.SetTitle(doc, title)
	}

	markdown := s.renderTimed(doc)
	s.writeRendered(w, r, doc, markdown)
}

func (s *Server) renderTimed(doc ir.Document) string {
	start := time.Now()
	markdown := s.renderer.Render(doc)
	if s.stats != nil {
		s.stats.Record(time.Since(start).Milliseconds())
	}
	return markdown
}

// writeRendered returns the Markdown either raw or wrapped in JSON,
// depending on the format query parameter.
func (s *Server) writeRendered(w http.ResponseWriter, r *http.Request, doc ir.Document, markdown string) {
	if r.URL.Query().Get("format") == "raw" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, markdown)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"title":        ir.String(doc.Metadata(), "title", "query"),
		"chapters":     len(doc.Chapters()),
		"markdown":     markdown,
		"content_hash": pipeline.ContentHashHex([]byte(markdown)),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
