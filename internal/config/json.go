package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medvault/internal/flagx"
	"github.com/dmitrijs2005/medvault/internal/timex"
)

// JsonConfig mirrors Config for JSON files. PresignExpiry accepts either a
// duration string ("15m") or integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN        string         `json:"database_dsn"`
	RecordStore        string         `json:"record_store"`
	BoltPath           string         `json:"bolt_path"`
	ObjectStore        string         `json:"object_store"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	PresignExpiry      timex.Duration `json:"presign_expiry"`
	Platform           string         `json:"platform"`
	ViewerAddr         string         `json:"viewer_addr"`
	ViewerBaseURL      string         `json:"viewer_base_url"`
	TokenSecret        string         `json:"token_secret"`
	LogFormat          string         `json:"log_format"`
	SensitiveMIMETypes []string       `json:"sensitive_mime_types"`
}

// parseJson overlays config with the JSON file named by -c/-config in args.
// Keys missing from the file keep their current value. Nothing happens when
// no file is given.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RecordStore, c.RecordStore)
	setString(&config.BoltPath, c.BoltPath)
	setString(&config.ObjectStore, c.ObjectStore)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.PresignExpiry.Duration != 0 {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
	setString(&config.Platform, c.Platform)
	setString(&config.ViewerAddr, c.ViewerAddr)
	setString(&config.ViewerBaseURL, c.ViewerBaseURL)
	setString(&config.TokenSecret, c.TokenSecret)
	setString(&config.LogFormat, c.LogFormat)
	if c.SensitiveMIMETypes != nil {
		config.SensitiveMIMETypes = c.SensitiveMIMETypes
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
