package api

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dgallion1/docgen/internal/render"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req := render.DefaultExportRequest()
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	path, err := s.renderer.Render(req)
	if err != nil {
		var re *render.Error
		if errors.As(err, &re) && re.Op == "validate" {
			jsonError(w, "invalid_request", re.Err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("export failed", "error", err, "topic", req.Topic)
		jsonError(w, "render_failed", err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Error("rendered file unreadable", "error", err, "path", path)
		jsonError(w, "render_failed", render.ErrOutputMissing.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		jsonError(w, "render_failed", err.Error(), http.StatusInternalServerError)
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
