package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Model endpoint (OpenRouter-compatible)
	OpenRouterAPIKey string
	OpenRouterBase   string
	DefaultModel     string
	Timeout          time.Duration
	AppReferer       string
	AppTitle         string

	// HTTP surface
	CORSAllowOrigins []string
	APIKey           string // optional bearer token for /api and generation routes

	// Files
	OutputDir   string
	FrontendDir string

	// Upload limits
	MaxUploadBytes int64

	// Model latency stats window
	LLMStatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads a .env file when present and then the environment. Variables
// already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBase:   envOr("OPENROUTER_BASE", "https://openrouter.ai/api/v1"),
		DefaultModel:     envOr("DEFAULT_MODEL", "tngtech/deepseek-r1t-chimera:free"),
		Timeout:          envSeconds("TIMEOUT", 180*time.Second),
		AppReferer:       envOr("APP_REFERER", "http://localhost"),
		AppTitle:         envOr("APP_TITLE", "DocGen Local"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS"),
		APIKey:           os.Getenv("DOCGEN_API_KEY"),

		OutputDir:   envOr("OUTPUT_DIR", "output"),
		FrontendDir: envOr("FRONTEND_DIR", "frontend"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20), // 20MB

		LLMStatsWindow: envDuration("LLM_STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if len(cfg.CORSAllowOrigins) == 0 {
		cfg.CORSAllowOrigins = []string{"*"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	if cfg.LLMStatsWindow <= 0 {
		cfg.LLMStatsWindow = 1 * time.Hour
	}
	cfg.OpenRouterBase = strings.TrimRight(cfg.OpenRouterBase, "/")

	return cfg
}

func (c Config) Validate() error {
	if c.OpenRouterAPIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if !strings.HasPrefix(c.OpenRouterBase, "http://") && !strings.HasPrefix(c.OpenRouterBase, "https://") {
		return fmt.Errorf("OPENROUTER_BASE must be an http(s) URL, got %q", c.OpenRouterBase)
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("DEFAULT_MODEL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envSeconds accepts a plain number of seconds ("180", "2.5") or a Go
// duration ("3m").
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
