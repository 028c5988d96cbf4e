package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/docgen/internal/importer"
)

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "too_large", fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid_request", "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "invalid_request", "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupported(filename) {
		jsonError(w, "unsupported_file", fmt.Sprintf("unsupported file type: %q", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "invalid_request", "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "too_large", fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	sec, err := importer.Import(bytes.NewReader(data), filename, importer.Options{
		PDFFallback: s.cfg.PDFFallbackPdftotext,
	})
	switch {
	case errors.Is(err, importer.ErrUnsupported):
		jsonError(w, "unsupported_file", err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, importer.ErrNoContent):
		jsonError(w, "no_content", err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "import_failed", err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.log.Info("document imported",
		"filename", filename,
		"bytes", len(data),
		"sections", len(sec.Subsections),
		"words", sec.CountWords(),
	)
	writeJSON(w, http.StatusOK, map[string]any{"essay": sec})
}
