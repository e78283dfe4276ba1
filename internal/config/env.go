package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name, e.g. MEDVAULT_S3_BUCKET.
const EnvPrefix = "MEDVAULT_"

// parseEnv overlays cfg with MEDVAULT_* environment variables. Unset
// variables leave the current values untouched.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
