package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docgen/internal/config"
	"github.com/dgallion1/docgen/internal/generate"
	"github.com/dgallion1/docgen/internal/llm"
	"github.com/dgallion1/docgen/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP layer calls into.
type Deps struct {
	Generator *generate.Service
	Renderer  *render.Renderer
	Stats     *llm.LLMStats
	Model     string
}

// Server is the HTTP API server for docgen.
type Server struct {
	router    chi.Router
	generator *generate.Service
	renderer  *render.Renderer
	stats     *llm.LLMStats
	model     string
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		generator: deps.Generator,
		renderer:  deps.Renderer,
		stats:     deps.Stats,
		model:     deps.Model,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.log))
	r.Use(corsHandler(s.cfg.CORSAllowOrigins))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Handle("/static/*", s.staticFiles())

	// Model and file endpoints, behind a bearer key when one is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/generate", s.handleGenerate)
		r.Post("/api/generate", s.handleGenerate)
		r.Post("/export-docx", s.handleExport)
		r.Post("/api/export", s.handleExport)
		r.Post("/api/import", s.handleImport)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.generator != nil {
		resp["generation"] = map[string]int{
			"in_flight": s.generator.InFlight(),
			"waiting":   s.generator.Waiting(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
