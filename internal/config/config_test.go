package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected defaults to load, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.AnalysisBudget != 100*time.Second {
		t.Errorf("Expected 100s analysis budget, got %s", cfg.AnalysisBudget)
	}
	if cfg.RecognitionTimeout != 75*time.Second {
		t.Errorf("Expected 75s recognition timeout, got %s", cfg.RecognitionTimeout)
	}
	if cfg.SummaryBudget != 70*time.Second {
		t.Errorf("Expected 70s summary budget, got %s", cfg.SummaryBudget)
	}
	if cfg.MaxImageDimension != 768 {
		t.Errorf("Expected 768 max dimension, got %d", cfg.MaxImageDimension)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("Expected default model, got %s", cfg.GeminiModel)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYSIS_BUDGET", "200s")
	t.Setenv("RECOGNITION_TIMEOUT", "120s")
	t.Setenv("ENRICHMENT_TIMEOUT", "30s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected overrides to load, got %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.AnalysisBudget != 200*time.Second {
		t.Errorf("Expected 200s budget, got %s", cfg.AnalysisBudget)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	invalidPorts := []string{"not-a-port", "0", "70000"}
	for _, port := range invalidPorts {
		t.Setenv("PORT", port)
		if _, err := LoadFromEnv(); err == nil {
			t.Errorf("Expected error for PORT=%q", port)
		}
	}
}

func TestLoadFromEnv_BudgetMustExceedStages(t *testing.T) {
	t.Setenv("ANALYSIS_BUDGET", "50s")
	t.Setenv("RECOGNITION_TIMEOUT", "40s")
	t.Setenv("ENRICHMENT_TIMEOUT", "15s")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when stage timeouts exceed the analysis budget")
	}
}

func TestLoadFromEnv_SummaryBudgetMustExceedGeneration(t *testing.T) {
	t.Setenv("SUMMARY_BUDGET", "30s")
	t.Setenv("GENERATION_TIMEOUT", "30s")

	if _, err := LoadFromEnv(); err == nil {
		t.Error("Expected error when generation timeout reaches the summary budget")
	}
}

func TestLoadFromEnv_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("ANALYSIS_BUDGET", "soon")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected fallback to default, got %v", err)
	}
	if cfg.AnalysisBudget != 100*time.Second {
		t.Errorf("Expected default budget for unparsable value, got %s", cfg.AnalysisBudget)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: "8080"}
	if got := cfg.ServerAddress(); got != "127.0.0.1:8080" {
		t.Errorf("Expected 127.0.0.1:8080, got %s", got)
	}
}

func TestArchiveEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.ArchiveEnabled() {
		t.Error("Expected archive disabled without credentials")
	}

	cfg.AzureAccountName = "acct"
	cfg.AzureAccountKey = "key"
	if !cfg.ArchiveEnabled() {
		t.Error("Expected archive enabled with credentials")
	}
}
