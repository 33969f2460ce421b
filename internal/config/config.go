package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the service. The outer budgets must always
// exceed the sum of the inner stage timeouts they wrap, so that a late inner
// timeout still yields a typed error instead of a silent hang.
type Config struct {
	Host string
	Port string

	// Analysis path: AnalysisBudget wraps normalize -> recognize -> enrich.
	AnalysisBudget     time.Duration
	RecognitionTimeout time.Duration
	EnrichmentTimeout  time.Duration

	// Summary path: SummaryBudget wraps the single generation call.
	SummaryBudget     time.Duration
	GenerationTimeout time.Duration

	MaxRequestBodySize int64
	MaxImageDimension  int
	JPEGQuality        int

	GeminiAPIKey string
	GeminiModel  string

	EdamamAppID  string
	EdamamAppKey string

	// Optional archive of normalized images; disabled when account is empty.
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// ArchiveEnabled reports whether the blob archive should be wired in.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		AnalysisBudget:     parseDurationOrDefault("ANALYSIS_BUDGET", 100*time.Second),
		RecognitionTimeout: parseDurationOrDefault("RECOGNITION_TIMEOUT", 75*time.Second),
		EnrichmentTimeout:  parseDurationOrDefault("ENRICHMENT_TIMEOUT", 15*time.Second),
		SummaryBudget:      parseDurationOrDefault("SUMMARY_BUDGET", 70*time.Second),
		GenerationTimeout:  parseDurationOrDefault("GENERATION_TIMEOUT", 55*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		MaxImageDimension:  int(parseIntOrDefault("MAX_IMAGE_DIMENSION", 768)),
		JPEGQuality:        int(parseIntOrDefault("JPEG_QUALITY", 85)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		EdamamAppID:        os.Getenv("EDAMAM_APP_ID"),
		EdamamAppKey:       os.Getenv("EDAMAM_APP_KEY"),
		AzureAccountName:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:    os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:     getEnvOrDefault("AZURE_STORAGE_CONTAINER", "analyses"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.MaxImageDimension <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_DIMENSION must be > 0 (got %d)", cfg.MaxImageDimension)
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be in 1..100 (got %d)", cfg.JPEGQuality)
	}
	if cfg.AnalysisBudget <= 0 || cfg.RecognitionTimeout <= 0 || cfg.EnrichmentTimeout <= 0 {
		return nil, fmt.Errorf("analysis timeouts must be > 0 (got budget=%s, recognition=%s, enrichment=%s)",
			cfg.AnalysisBudget, cfg.RecognitionTimeout, cfg.EnrichmentTimeout)
	}
	if cfg.SummaryBudget <= 0 || cfg.GenerationTimeout <= 0 {
		return nil, fmt.Errorf("summary timeouts must be > 0 (got budget=%s, generation=%s)",
			cfg.SummaryBudget, cfg.GenerationTimeout)
	}
	// Inner stages must fit inside their outer budget with room to spare,
	// otherwise an inner timeout races the supervisor instead of beating it.
	if cfg.RecognitionTimeout+cfg.EnrichmentTimeout >= cfg.AnalysisBudget {
		return nil, fmt.Errorf("RECOGNITION_TIMEOUT+ENRICHMENT_TIMEOUT (%s) must be below ANALYSIS_BUDGET (%s)",
			cfg.RecognitionTimeout+cfg.EnrichmentTimeout, cfg.AnalysisBudget)
	}
	if cfg.GenerationTimeout >= cfg.SummaryBudget {
		return nil, fmt.Errorf("GENERATION_TIMEOUT (%s) must be below SUMMARY_BUDGET (%s)",
			cfg.GenerationTimeout, cfg.SummaryBudget)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
