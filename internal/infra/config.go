package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// Everything here is injected explicitly at construction time; no package reads
// the environment after startup, so tests can wire stubs without env mutation.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	CatalogPath    string
	GeoIPDBPath    string
	DefaultLocale  string
	AllowedOrigins []string

	DashScopeAPIKey   string
	DashScopeBaseURL  string
	LeonardoAPIKey    string
	LeonardoBaseURL   string
	KlingAPIKey       string
	KlingBaseURL      string
	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string

	ImagePollInterval time.Duration
	ImagePollAttempts int
	ImagePollBudget   time.Duration
	VideoPollInterval time.Duration
	VideoPollAttempts int
	VideoPollBudget   time.Duration
	AudioPollInterval time.Duration
	AudioPollAttempts int
	AudioPollBudget   time.Duration

	MaxInflightGenerations int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the service
// serves single-tenant deployments from env-seeded provider keys.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:  getEnv("DEFAULT_LOCALE", "en"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),

		DashScopeAPIKey:   os.Getenv("DASHSCOPE_API_KEY"),
		DashScopeBaseURL:  os.Getenv("DASHSCOPE_BASE_URL"),
		LeonardoAPIKey:    os.Getenv("LEONARDO_API_KEY"),
		LeonardoBaseURL:   os.Getenv("LEONARDO_BASE_URL"),
		KlingAPIKey:       os.Getenv("KLING_API_KEY"),
		KlingBaseURL:      os.Getenv("KLING_BASE_URL"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: os.Getenv("ELEVENLABS_BASE_URL"),

		ImagePollInterval: time.Second * time.Duration(getEnvInt("IMAGE_POLL_INTERVAL_SECONDS", 2)),
		ImagePollAttempts: getEnvInt("IMAGE_POLL_MAX_ATTEMPTS", 20),
		ImagePollBudget:   time.Second * time.Duration(getEnvInt("IMAGE_POLL_BUDGET_SECONDS", 50)),
		VideoPollInterval: time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		VideoPollAttempts: getEnvInt("VIDEO_POLL_MAX_ATTEMPTS", 60),
		VideoPollBudget:   time.Second * time.Duration(getEnvInt("VIDEO_POLL_BUDGET_SECONDS", 600)),
		AudioPollInterval: time.Second * time.Duration(getEnvInt("AUDIO_POLL_INTERVAL_SECONDS", 2)),
		AudioPollAttempts: getEnvInt("AUDIO_POLL_MAX_ATTEMPTS", 15),
		AudioPollBudget:   time.Second * time.Duration(getEnvInt("AUDIO_POLL_BUDGET_SECONDS", 30)),

		MaxInflightGenerations: getEnvInt("MAX_INFLIGHT_GENERATIONS", 32),

		HTTPReadTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Write timeout must outlast the longest blocking video poll budget.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 660)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
