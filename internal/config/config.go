package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the health-intake service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	SessionInactivityTimeout time.Duration
	SessionJanitorInterval   time.Duration

	GenerationMode    string
	GenerationHTTPURL string
	GenerationTimeout time.Duration

	TranslationMode    string
	TranslationHTTPURL string
	TranslationTimeout time.Duration

	RetrievalTopK     int
	ProfileTimeout    time.Duration
	PersistTimeout    time.Duration
	MedicationTimeout time.Duration

	DefaultLanguage string

	DatabaseURL string

	// Capability flags resolved once at load. The orchestrator branches on
	// these, never on whether an optional dependency happened to come up.
	TranslationEnabled bool
	PersistenceEnabled bool
	MedicationEnabled  bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "vitalia"),
		AllowAnyOrigin:           false,
		GenerationMode:           envOrDefault("GENERATION_MODE", "auto"),
		GenerationHTTPURL:        trimmedEnv("GENERATION_HTTP_URL"),
		TranslationMode:          envOrDefault("TRANSLATION_MODE", "auto"),
		TranslationHTTPURL:       trimmedEnv("TRANSLATION_HTTP_URL"),
		DefaultLanguage:          strings.ToLower(envOrDefault("APP_DEFAULT_LANGUAGE", "en")),
		DatabaseURL:              trimmedEnv("DATABASE_URL"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		SessionJanitorInterval:   time.Minute,
		GenerationTimeout:        20 * time.Second,
		TranslationTimeout:       8 * time.Second,
		ProfileTimeout:           2 * time.Second,
		PersistTimeout:           5 * time.Second,
		MedicationTimeout:        3 * time.Second,
		RetrievalTopK:            3,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionJanitorInterval, err = durationFromEnv("APP_SESSION_JANITOR_INTERVAL", cfg.SessionJanitorInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTimeout, err = durationFromEnv("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TranslationTimeout, err = durationFromEnv("TRANSLATION_TIMEOUT", cfg.TranslationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ProfileTimeout, err = durationFromEnv("PROFILE_TIMEOUT", cfg.ProfileTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.PersistTimeout, err = durationFromEnv("PERSIST_TIMEOUT", cfg.PersistTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MedicationTimeout, err = durationFromEnv("MEDICATION_TIMEOUT", cfg.MedicationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RetrievalTopK, err = intFromEnv("RETRIEVAL_TOP_K", cfg.RetrievalTopK)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.MedicationEnabled, err = boolFromEnv("MEDICATION_LOOKUP_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	cfg.PersistenceEnabled, err = boolFromEnv("PERSISTENCE_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.RetrievalTopK <= 0 {
		return Config{}, fmt.Errorf("RETRIEVAL_TOP_K must be positive")
	}
	if cfg.GenerationTimeout <= 0 {
		return Config{}, fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if strings.TrimSpace(cfg.DefaultLanguage) == "" {
		return Config{}, fmt.Errorf("APP_DEFAULT_LANGUAGE must not be empty")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.GenerationMode)) {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("GENERATION_MODE must be one of auto, http, mock")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.TranslationMode)) {
	case "auto", "http", "mock", "off":
	default:
		return Config{}, fmt.Errorf("TRANSLATION_MODE must be one of auto, http, mock, off")
	}

	cfg.TranslationEnabled = strings.ToLower(strings.TrimSpace(cfg.TranslationMode)) != "off"

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
