package config

import "errors"

// ErrInvalidConfig is returned when the merged configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")
