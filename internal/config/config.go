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
	// Object store connection. An endpoint containing "amazonaws.com"
	// selects the AWS S3 backend; anything else selects MinIO.
	StoreEndpoint  string
	StoreAccessKey string
	StoreSecretKey string
	StoreBucket    string
	StoreUseSSL    bool
	StoreRegion    string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset handling.
	CacheTTL     time.Duration
	ExcelSheet   string
	DefaultLimit int

	// HTTP plumbing.
	CORSAllowedOrigins []string
	JWTPublicKey       string // PEM-encoded RSA key; empty disables auth

	// Audit trail. Kafka publishing is enabled by setting brokers.
	AuditKafkaBrokers []string
	AuditKafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("DATA_CACHE_TTL", "300s")
	if err != nil {
		return nil, err
	}

	defaultLimit, err := parseInt("DEFAULT_QUERY_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StoreEndpoint:  envOrDefault("S3_ENDPOINT", "localhost:9000"),
		StoreAccessKey: envOrDefault("S3_ACCESS_KEY", "minioadmin"),
		StoreSecretKey: envOrDefault("S3_SECRET_KEY", "minioadmin"),
		StoreBucket:    envOrDefault("S3_BUCKET_NAME", "power-viz"),
		StoreUseSSL:    strings.EqualFold(os.Getenv("S3_USE_SSL"), "true"),
		StoreRegion:    envOrDefault("S3_REGION", "us-east-1"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CacheTTL:     cacheTTL,
		ExcelSheet:   envOrDefault("EXCEL_SHEET", "GEN23"),
		DefaultLimit: defaultLimit,

		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS",
			"http://localhost:5173,http://localhost:3000,http://localhost")),
		JWTPublicKey: os.Getenv("JWT_PUBLIC_KEY"),

		AuditKafkaBrokers: splitList(os.Getenv("AUDIT_KAFKA_BROKERS")),
		AuditKafkaTopic:   envOrDefault("AUDIT_KAFKA_TOPIC", "plant-api-audit"),
	}

	if cfg.StoreEndpoint == "" {
		return nil, errors.New("S3_ENDPOINT is required")
	}
	if cfg.StoreBucket == "" {
		return nil, errors.New("S3_BUCKET_NAME is required")
	}
	if cfg.CacheTTL <= 0 {
		return nil, errors.New("DATA_CACHE_TTL must be positive")
	}
	if cfg.DefaultLimit <= 0 {
		return nil, errors.New("DEFAULT_QUERY_LIMIT must be positive")
	}

	return cfg, nil
}

// UseAWS reports whether the endpoint points at AWS S3 rather than a
// MinIO-compatible service.
func (c *Config) UseAWS() bool {
	return strings.Contains(c.StoreEndpoint, "amazonaws.com")
}

// AuditKafkaEnabled reports whether audit events should also be published
// to Kafka.
func (c *Config) AuditKafkaEnabled() bool {
	return len(c.AuditKafkaBrokers) > 0
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
