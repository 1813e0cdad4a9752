package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.StoreEndpoint)
	assert.Equal(t, "minioadmin", cfg.StoreAccessKey)
	assert.Equal(t, "minioadmin", cfg.StoreSecretKey)
	assert.Equal(t, "power-viz", cfg.StoreBucket)
	assert.False(t, cfg.StoreUseSSL)
	assert.Equal(t, "us-east-1", cfg.StoreRegion)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, "GEN23", cfg.ExcelSheet)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000", "http://localhost"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.JWTPublicKey)
	assert.False(t, cfg.AuditKafkaEnabled())
	assert.Equal(t, "plant-api-audit", cfg.AuditKafkaTopic)
	assert.False(t, cfg.UseAWS())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "s3.us-west-2.amazonaws.com")
	t.Setenv("S3_ACCESS_KEY", "AKIA123")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "plants")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("S3_REGION", "us-west-2")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_CACHE_TTL", "2m")
	t.Setenv("EXCEL_SHEET", "GEN22")
	t.Setenv("DEFAULT_QUERY_LIMIT", "25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://viz.example.com")
	t.Setenv("AUDIT_KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("AUDIT_KAFKA_TOPIC", "audit-events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3.us-west-2.amazonaws.com", cfg.StoreEndpoint)
	assert.True(t, cfg.UseAWS())
	assert.True(t, cfg.StoreUseSSL)
	assert.Equal(t, "us-west-2", cfg.StoreRegion)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "GEN22", cfg.ExcelSheet)
	assert.Equal(t, 25, cfg.DefaultLimit)
	assert.Equal(t, []string{"https://viz.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AuditKafkaEnabled())
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.AuditKafkaBrokers)
	assert.Equal(t, "audit-events", cfg.AuditKafkaTopic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"bad cache ttl", "DATA_CACHE_TTL", "five minutes"},
		{"negative cache ttl", "DATA_CACHE_TTL", "-1m"},
		{"bad default limit", "DEFAULT_QUERY_LIMIT", "many"},
		{"zero default limit", "DEFAULT_QUERY_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
