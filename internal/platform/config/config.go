package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Crawl backends.
const (
	BackendFirecrawl = "firecrawl"
	BackendLocal     = "local"
)

const hardURLLimit = 500

var (
	errInvalidPort    = errors.New("config: invalid PORT number")
	errURLLimits      = errors.New("config: URL limits must satisfy 1 <= FREE_MAX_URLS <= DEFAULT_MAX_URLS <= MAX_URLS_CAP <= 500")
	errUnknownBackend = errors.New("config: CRAWL_BACKEND must be \"firecrawl\" or \"local\"")
)

// Config holds all application configuration. Values come from an optional
// YAML file named by CONFIG_FILE, then environment variables override them.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	CrawlBackend     string `yaml:"crawl_backend"`
	FirecrawlAPIKey  string `yaml:"firecrawl_api_key"`
	FirecrawlBaseURL string `yaml:"firecrawl_base_url"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`

	// DefaultMaxURLs applies when a keyed caller does not choose a ceiling.
	DefaultMaxURLs int `yaml:"default_max_urls"`
	// MaxURLsCap is the hard ceiling for keyed callers.
	MaxURLsCap int `yaml:"max_urls_cap"`
	// FreeMaxURLs is the fixed ceiling for callers without their own key.
	FreeMaxURLs int `yaml:"free_max_urls"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:             "8080",
		LogLevel:         "ERROR",
		CrawlBackend:     BackendFirecrawl,
		FirecrawlBaseURL: "https://api.firecrawl.dev",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		OpenAIModel:      "gpt-4o-mini",
		DefaultMaxURLs:   20,
		MaxURLsCap:       100,
		FreeMaxURLs:      5,
	}
}

// Load reads configuration from the optional CONFIG_FILE and environment
// variables with sensible defaults.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CrawlBackend = getEnv("CRAWL_BACKEND", cfg.CrawlBackend)
	cfg.FirecrawlAPIKey = getEnv("FIRECRAWL_API_KEY", cfg.FirecrawlAPIKey)
	cfg.FirecrawlBaseURL = getEnv("FIRECRAWL_BASE_URL", cfg.FirecrawlBaseURL)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.DefaultMaxURLs = getEnvAsInt("DEFAULT_MAX_URLS", cfg.DefaultMaxURLs)
	cfg.MaxURLsCap = getEnvAsInt("MAX_URLS_CAP", cfg.MaxURLsCap)
	cfg.FreeMaxURLs = getEnvAsInt("FREE_MAX_URLS", cfg.FreeMaxURLs)

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.FreeMaxURLs < 1 || c.FreeMaxURLs > c.DefaultMaxURLs ||
		c.DefaultMaxURLs > c.MaxURLsCap || c.MaxURLsCap > hardURLLimit {
		return fmt.Errorf("%w: got %d/%d/%d", errURLLimits, c.FreeMaxURLs, c.DefaultMaxURLs, c.MaxURLsCap)
	}

	switch c.CrawlBackend {
	case BackendFirecrawl, BackendLocal:
	default:
		return fmt.Errorf("%w: got %q", errUnknownBackend, c.CrawlBackend)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
