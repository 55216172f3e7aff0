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
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	SitesFile          string
	TopN               int
	CORSAllowedOrigins []string

	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaReportTopic  string
	KafkaGroupID      string

	BatchSize          int
	BatchFlushInterval time.Duration
}

const (
	maxTopN      = 50
	maxBatchSize = 1000
)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	topN, err := parseBoundedInt("TOP_N", 5, maxTopN)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBoundedInt("BATCH_SIZE", 50, maxBatchSize)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	brokers := parseList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KAFKA_ENABLED %q: %w", v, err)
		}
	}

	cfg := &Config{
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		SitesFile:          os.Getenv("SITES_FILE"),
		TopN:               topN,
		CORSAllowedOrigins: parseList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      brokers,
		KafkaRequestTopic: envOrDefault("KAFKA_REQUEST_TOPIC", "site-analysis-requests"),
		KafkaReportTopic:  envOrDefault("KAFKA_REPORT_TOPIC", "site-analysis-reports"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "hydrogen-sites"),

		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaRequestTopic == cfg.KafkaReportTopic {
		return nil, errors.New("KAFKA_REQUEST_TOPIC and KAFKA_REPORT_TOPIC must differ")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func parseBoundedInt(key string, fallback, upper int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if n < 1 || n > upper {
		return 0, fmt.Errorf("invalid %s %d: must be between 1 and %d", key, n, upper)
	}
	return n, nil
}
