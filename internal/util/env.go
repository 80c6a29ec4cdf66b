// Package util holds small startup helpers for reading configuration
// from the environment.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// BoolEnv reads a boolean environment variable, returning defaultValue
// when the variable is unset or not a recognized boolean. Recognized
// values are true/1/yes/on and false/0/no/off, case-insensitive.
func BoolEnv(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("BoolEnv: unrecognized boolean value, using default", "key", key, "value", raw, "default", defaultValue)
	return defaultValue
}

// EnvOrDefault reads a string environment variable, returning
// defaultValue when the variable is unset or blank.
func EnvOrDefault(key, defaultValue string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	slog.Debug("EnvOrDefault: variable unset, using default", "key", key, "default", defaultValue)
	return defaultValue
}
