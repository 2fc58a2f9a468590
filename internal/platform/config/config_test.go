package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("CRAWL_BACKEND", "")
	t.Setenv("FREE_MAX_URLS", "")
	t.Setenv("DEFAULT_MAX_URLS", "")
	t.Setenv("MAX_URLS_CAP", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.CrawlBackend != BackendFirecrawl {
		t.Errorf("CrawlBackend = %q, want %q", cfg.CrawlBackend, BackendFirecrawl)
	}
	if cfg.MaxURLsCap != 100 || cfg.DefaultMaxURLs != 20 || cfg.FreeMaxURLs != 5 {
		t.Errorf("limits = %d/%d/%d, want 5/20/100", cfg.FreeMaxURLs, cfg.DefaultMaxURLs, cfg.MaxURLsCap)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "port: \"9090\"\ncrawl_backend: local\nfree_max_urls: 3\nopenai_model: gpt-test\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("CRAWL_BACKEND", "")
	t.Setenv("FREE_MAX_URLS", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want env override %q", cfg.Port, "7070")
	}
	if cfg.CrawlBackend != BackendLocal {
		t.Errorf("CrawlBackend = %q, want %q", cfg.CrawlBackend, BackendLocal)
	}
	if cfg.FreeMaxURLs != 3 {
		t.Errorf("FreeMaxURLs = %d, want 3", cfg.FreeMaxURLs)
	}
	if cfg.OpenAIModel != "gpt-test" {
		t.Errorf("OpenAIModel = %q, want %q", cfg.OpenAIModel, "gpt-test")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = "http" }, wantErr: errInvalidPort},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, wantErr: errInvalidPort},
		{name: "zero free limit", mutate: func(c *Config) { c.FreeMaxURLs = 0 }, wantErr: errURLLimits},
		{name: "free above default", mutate: func(c *Config) { c.FreeMaxURLs = 50 }, wantErr: errURLLimits},
		{name: "cap above hard limit", mutate: func(c *Config) { c.MaxURLsCap = 1000 }, wantErr: errURLLimits},
		{name: "unknown backend", mutate: func(c *Config) { c.CrawlBackend = "spider" }, wantErr: errUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
