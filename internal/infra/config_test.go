package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DefaultLocale != "en" {
		t.Fatalf("default locale = %q", cfg.DefaultLocale)
	}
	if cfg.VideoPollInterval != 10*time.Second {
		t.Fatalf("video poll interval = %v", cfg.VideoPollInterval)
	}
	if cfg.VideoPollAttempts != 60 {
		t.Fatalf("video poll attempts = %d", cfg.VideoPollAttempts)
	}
	if cfg.MaxInflightGenerations != 32 {
		t.Fatalf("max inflight = %d", cfg.MaxInflightGenerations)
	}
	if cfg.HTTPWriteTimeout <= cfg.VideoPollBudget {
		t.Fatalf("write timeout %v must outlast the video poll budget %v", cfg.HTTPWriteTimeout, cfg.VideoPollBudget)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DASHSCOPE_API_KEY", "sk-env")
	t.Setenv("VIDEO_POLL_INTERVAL_SECONDS", "3")
	t.Setenv("VIDEO_POLL_MAX_ATTEMPTS", "7")
	t.Setenv("MAX_INFLIGHT_GENERATIONS", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DashScopeAPIKey != "sk-env" {
		t.Fatalf("dashscope key = %q", cfg.DashScopeAPIKey)
	}
	if cfg.VideoPollInterval != 3*time.Second {
		t.Fatalf("video poll interval = %v", cfg.VideoPollInterval)
	}
	if cfg.VideoPollAttempts != 7 {
		t.Fatalf("video poll attempts = %d", cfg.VideoPollAttempts)
	}
	if cfg.MaxInflightGenerations != 4 {
		t.Fatalf("max inflight = %d", cfg.MaxInflightGenerations)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigIgnoresBadInts(t *testing.T) {
	t.Setenv("IMAGE_POLL_MAX_ATTEMPTS", "many")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ImagePollAttempts != 20 {
		t.Fatalf("image poll attempts = %d, want fallback 20", cfg.ImagePollAttempts)
	}
}
