package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-d", "db", "-s", "postgres", "-f", "r.db", "-o", "memory",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-x", "2m", "-m", "native", "-a", ":1", "-w", "http://w", "-k", "k", "-l", "json",
				"-i", "application/pdf, image/png ,",
			},
			expected: &Config{
				DatabaseDSN:        "db",
				RecordStore:        "postgres",
				BoltPath:           "r.db",
				ObjectStore:        "memory",
				S3RootUser:         "user",
				S3RootPassword:     "password",
				S3Bucket:           "bucket",
				S3Region:           "us-west-1",
				S3BaseEndpoint:     "http://endpoint",
				PresignExpiry:      2 * time.Minute,
				Platform:           "native",
				ViewerAddr:         ":1",
				ViewerBaseURL:      "http://w",
				TokenSecret:        "k",
				LogFormat:          "json",
				SensitiveMIMETypes: []string{"application/pdf", "image/png"},
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"view", "--record", "r-1", "--token", "t", "-b", "bucket"},
			expected: &Config{S3Bucket: "bucket", SensitiveMIMETypes: []string{}},
		},
		{
			name:    "bad duration",
			args:    []string{"-x", "later"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestParseFlags_KeepsPolicyWhenNotGiven(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.NoError(t, parseFlags(cfg, []string{"-m", "native"}))
	assert.Equal(t, []string{"application/pdf", "image/*"}, cfg.SensitiveMIMETypes)
}
