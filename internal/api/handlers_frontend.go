package api

import (
	"net/http"
	"os"
	"path/filepath"
)

const placeholderPage = `<!doctype html>
<html lang="ru">
<head><meta charset="utf-8"><title>DocGen</title></head>
<body>
<h1>DocGen</h1>
<p>Frontend is not installed. The API is available at <code>POST /generate</code> and <code>POST /export-docx</code>.</p>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(s.cfg.FrontendDir, "index.html")
	if info, err := os.Stat(index); err == nil && !info.IsDir() {
		http.ServeFile(w, r, index)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(placeholderPage))
}

func (s *Server) staticFiles() http.Handler {
	if info, err := os.Stat(s.cfg.FrontendDir); err != nil || !info.IsDir() {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.FrontendDir)))
}
