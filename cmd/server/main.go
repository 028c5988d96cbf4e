package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docgen/internal/api"
	"github.com/dgallion1/docgen/internal/config"
	"github.com/dgallion1/docgen/internal/generate"
	"github.com/dgallion1/docgen/internal/llm"
	"github.com/dgallion1/docgen/internal/render"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	stats := llm.NewLLMStats(cfg.LLMStatsWindow)
	client := llm.NewClient(llm.Options{
		BaseURL: cfg.OpenRouterBase,
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.DefaultModel,
		Timeout: cfg.Timeout,
		Referer: cfg.AppReferer,
		Title:   cfg.AppTitle,
		Log:     log.With("component", "llm"),
		Stats:   stats,
	})

	gen := generate.NewService(client, log.With("component", "generate"))
	renderer := render.New(cfg.OutputDir, log.With("component", "render"))

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Generator: gen,
		Renderer:  renderer,
		Stats:     stats,
		Model:     client.Model(),
	}, log, cfg)

	// A generation may take several full model timeouts plus backoff.
	writeTimeout := cfg.Timeout*5 + 2*time.Minute
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting docgen",
		"port", cfg.Port,
		"model", cfg.DefaultModel,
		"output_dir", cfg.OutputDir,
		"cors_origins", cfg.CORSAllowOrigins,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
