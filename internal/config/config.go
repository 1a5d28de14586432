package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatabaseURL     string
	MigrationsPath  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// USGS feed polling.
	USGSBaseURL       string
	USGSTimeout       time.Duration
	FetchInterval     time.Duration
	FetchLookbackDays int
	MinMagnitude      float64
	FetchLimit        int

	// Risk zone assessment.
	GridSize         float64
	RiskLookbackDays int
	RefreshInterval  time.Duration

	// Optional Kafka sink for stored earthquakes.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	usgsTimeout, err := parseDurationEnv("USGS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	fetchInterval, err := parseDurationEnv("FETCH_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDurationEnv("REFRESH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	fetchLookback, err := parseIntEnv("FETCH_LOOKBACK_DAYS", 7)
	if err != nil {
		return nil, err
	}
	fetchLimit, err := parseIntEnv("FETCH_LIMIT", 20000)
	if err != nil {
		return nil, err
	}
	riskLookback, err := parseIntEnv("RISK_LOOKBACK_DAYS", 365)
	if err != nil {
		return nil, err
	}

	minMagnitude, err := parseFloatEnv("MIN_MAGNITUDE", 2.0)
	if err != nil {
		return nil, err
	}
	gridSize, err := parseFloatEnv("GRID_SIZE", 2.0)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MigrationsPath:  envOrDefault("MIGRATIONS_PATH", "internal/adapter/postgres/migrations"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		USGSBaseURL:       envOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		USGSTimeout:       usgsTimeout,
		FetchInterval:     fetchInterval,
		FetchLookbackDays: fetchLookback,
		MinMagnitude:      minMagnitude,
		FetchLimit:        fetchLimit,

		GridSize:         gridSize,
		RiskLookbackDays: riskLookback,
		RefreshInterval:  refreshInterval,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "earthquake-events"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.GridSize <= 0 {
		return nil, errors.New("GRID_SIZE must be positive")
	}
	if cfg.RiskLookbackDays <= 0 {
		return nil, errors.New("RISK_LOOKBACK_DAYS must be positive")
	}
	if cfg.FetchLookbackDays <= 0 {
		return nil, errors.New("FETCH_LOOKBACK_DAYS must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
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
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
