package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("API_BASE_URL", "https://ops.example.com/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.APIBaseURL != "https://ops.example.com/api" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != "15s" {
		t.Errorf("HTTPTimeout = %q, want %q", cfg.HTTPTimeout, "15s")
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.PageSize)
	}
	if cfg.MirrorTTL != "12h" {
		t.Errorf("MirrorTTL = %q, want %q", cfg.MirrorTTL, "12h")
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("OTLPEndpoint = %q, want empty", cfg.OTLPEndpoint)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	os.Clearenv()
	if _, err := Load(); err == nil {
		t.Fatal("Load without API_BASE_URL should fail")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("API_BASE_URL", "http://localhost:8000")
	os.Setenv("HTTP_TIMEOUT", "3s")
	os.Setenv("PAGE_SIZE", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Timeout() != 3*time.Second {
		t.Errorf("Timeout() = %v, want 3s", cfg.Timeout())
	}
	if cfg.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.PageSize)
	}
}

func TestLoad_InvalidPageSize(t *testing.T) {
	os.Clearenv()
	os.Setenv("API_BASE_URL", "http://localhost:8000")
	os.Setenv("PAGE_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Fatal("PAGE_SIZE=0 should fail validation")
	}
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{HTTPTimeout: "bogus", MirrorTTL: "-1h"}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("Timeout() fallback = %v, want 15s", cfg.Timeout())
	}
	if cfg.MirrorLifetime() != 12*time.Hour {
		t.Errorf("MirrorLifetime() fallback = %v, want 12h", cfg.MirrorLifetime())
	}
}
