package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllFields(t *testing.T) {
	envVars := map[string]string{
		"MEDVAULT_DATABASE_DSN":         "postgres://env",
		"MEDVAULT_RECORD_STORE":         "postgres",
		"MEDVAULT_BOLT_PATH":            "/tmp/r.db",
		"MEDVAULT_OBJECT_STORE":         "memory",
		"MEDVAULT_S3_ROOT_USER":         "u",
		"MEDVAULT_S3_ROOT_PASSWORD":     "p",
		"MEDVAULT_S3_BUCKET":            "b",
		"MEDVAULT_S3_REGION":            "r",
		"MEDVAULT_S3_BASE_ENDPOINT":     "http://minio:9000",
		"MEDVAULT_PRESIGN_EXPIRY":       "30s",
		"MEDVAULT_PLATFORM":             "native",
		"MEDVAULT_VIEWER_ADDR":          ":7000",
		"MEDVAULT_VIEWER_BASE_URL":      "http://v",
		"MEDVAULT_TOKEN_SECRET":         "s",
		"MEDVAULT_LOG_FORMAT":           "zerolog",
		"MEDVAULT_SENSITIVE_MIME_TYPES": "application/pdf,image/*,application/dicom",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, "postgres", cfg.RecordStore)
	assert.Equal(t, "/tmp/r.db", cfg.BoltPath)
	assert.Equal(t, "memory", cfg.ObjectStore)
	assert.Equal(t, "u", cfg.S3RootUser)
	assert.Equal(t, "p", cfg.S3RootPassword)
	assert.Equal(t, "b", cfg.S3Bucket)
	assert.Equal(t, "r", cfg.S3Region)
	assert.Equal(t, "http://minio:9000", cfg.S3BaseEndpoint)
	assert.Equal(t, 30*time.Second, cfg.PresignExpiry)
	assert.Equal(t, "native", cfg.Platform)
	assert.Equal(t, ":7000", cfg.ViewerAddr)
	assert.Equal(t, "http://v", cfg.ViewerBaseURL)
	assert.Equal(t, "s", cfg.TokenSecret)
	assert.Equal(t, "zerolog", cfg.LogFormat)
	assert.Equal(t, []string{"application/pdf", "image/*", "application/dicom"}, cfg.SensitiveMIMETypes)
}

func TestParseEnv_UnsetKeepsValues(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "medvault", cfg.S3Bucket)
	assert.Equal(t, 15*time.Minute, cfg.PresignExpiry)
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("MEDVAULT_PRESIGN_EXPIRY", "eventually")

	err := parseEnv(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error getting env configs")
}
