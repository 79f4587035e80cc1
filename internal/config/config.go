package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DonkiBaseURL    string
	DonkiAPIKey     string
	DonkiTimeout    time.Duration
	DonkiMaxRetries int
	DonkiRateLimit  float64 // requests per second

	FetchWindowDays int
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka alert sink configuration. Alerts are disabled when no brokers
	// are configured.
	KafkaBrokers    []string
	KafkaAlertTopic string
	KafkaEnabled    bool
	AlertMaxScore   domain.ImpactScore
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	donkiTimeout, err := parseDurationEnv("DONKI_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDurationEnv("REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	maxRetries, err := parseIntEnv("DONKI_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	windowDays, err := parseIntEnv("FETCH_WINDOW_DAYS", 3)
	if err != nil {
		return nil, err
	}

	rateLimit, err := parseFloatEnv("DONKI_RATE_LIMIT", 2)
	if err != nil {
		return nil, err
	}

	alertMaxScore, err := parseIntEnv("ALERT_MAX_SCORE", int(domain.ScoreEarthDirected))
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DonkiBaseURL:    envOrDefault("DONKI_BASE_URL", "https://api.nasa.gov/DONKI"),
		DonkiAPIKey:     envOrDefault("DONKI_API_KEY", "DEMO_KEY"),
		DonkiTimeout:    donkiTimeout,
		DonkiMaxRetries: maxRetries,
		DonkiRateLimit:  rateLimit,

		FetchWindowDays: windowDays,
		RefreshInterval: refreshInterval,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    brokers,
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "cme-alerts"),
		KafkaEnabled:    kafkaEnabled,
		AlertMaxScore:   domain.ImpactScore(alertMaxScore),
	}

	if cfg.DonkiBaseURL == "" {
		return nil, errors.New("DONKI_BASE_URL is required")
	}
	if cfg.FetchWindowDays <= 0 {
		return nil, errors.New("FETCH_WINDOW_DAYS must be positive")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, errors.New("REFRESH_INTERVAL must be positive")
	}
	if cfg.DonkiRateLimit <= 0 {
		return nil, errors.New("DONKI_RATE_LIMIT must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.AlertMaxScore < domain.ScoreArrivalPredicted || cfg.AlertMaxScore > domain.ScoreModeled {
		return nil, errors.New("ALERT_MAX_SCORE must be between 1 and 4")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

// parseBrokers splits a comma-separated broker list, trimming whitespace and
// dropping empty entries.
func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return brokers
}
