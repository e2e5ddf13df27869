// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every datastore environment variable.
const EnvPrefix = "DATASTORE_"

// ParseEnvPrefixed loads configuration whose env tags are relative to prefix,
// so `env:"CAPACITY"` reads DATASTORE_CAPACITY when prefix is EnvPrefix.
func ParseEnvPrefixed(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
