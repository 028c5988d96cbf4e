package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var configKeys = []string{
	"PORT", "OPENROUTER_API_KEY", "OPENROUTER_BASE", "DEFAULT_MODEL", "TIMEOUT",
	"APP_REFERER", "APP_TITLE", "CORS_ALLOW_ORIGINS", "DOCGEN_API_KEY",
	"OUTPUT_DIR", "FRONTEND_DIR", "MAX_UPLOAD_BYTES", "LLM_STATS_WINDOW",
	"PDF_FALLBACK_PDFTOTEXT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.OpenRouterBase != "https://openrouter.ai/api/v1" {
		t.Errorf("unexpected base %q", cfg.OpenRouterBase)
	}
	if cfg.DefaultModel != "tngtech/deepseek-r1t-chimera:free" {
		t.Errorf("unexpected model %q", cfg.DefaultModel)
	}
	if cfg.Timeout != 180*time.Second {
		t.Errorf("expected 180s timeout, got %s", cfg.Timeout)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", cfg.CORSAllowOrigins)
	}
	if cfg.OutputDir != "output" || cfg.FrontendDir != "frontend" {
		t.Errorf("unexpected dirs %q %q", cfg.OutputDir, cfg.FrontendDir)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Errorf("expected 20MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMStatsWindow != time.Hour {
		t.Errorf("expected 1h stats window, got %s", cfg.LLMStatsWindow)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback on by default")
	}
	if cfg.AppReferer != "http://localhost" || cfg.AppTitle != "DocGen Local" {
		t.Errorf("unexpected attribution %q %q", cfg.AppReferer, cfg.AppTitle)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("OPENROUTER_BASE", "http://llm.local/v1/")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("LLM_STATS_WINDOW", "15m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := FromEnv()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.OpenRouterBase != "http://llm.local/v1" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.OpenRouterBase)
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.CORSAllowOrigins, want) {
		t.Errorf("expected %v, got %v", want, cfg.CORSAllowOrigins)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMStatsWindow != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.LLMStatsWindow)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestFromEnv_Timeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"60", 60 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{"3m", 3 * time.Minute},
		{"bogus", 180 * time.Second},
		{"-5", 180 * time.Second},
	}
	for _, tc := range tests {
		clearEnv(t)
		t.Setenv("TIMEOUT", tc.in)
		if got := FromEnv().Timeout; got != tc.want {
			t.Errorf("TIMEOUT=%q: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when OPENROUTER_API_KEY is missing")
	}

	cfg.OpenRouterAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.OpenRouterBase = "openrouter.ai"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for base URL without scheme")
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENROUTER_API_KEY=from-file\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	// Already-set variables win over the file.
	t.Setenv("PORT", "7100")
	// godotenv only fills variables that are unset, not empty.
	os.Unsetenv("OPENROUTER_API_KEY")
	t.Cleanup(func() { os.Unsetenv("OPENROUTER_API_KEY") })

	cfg := Load()
	if cfg.OpenRouterAPIKey != "from-file" {
		t.Errorf("expected key from .env, got %q", cfg.OpenRouterAPIKey)
	}
	if cfg.Port != "7100" {
		t.Errorf("expected environment to win, got port %q", cfg.Port)
	}
}
