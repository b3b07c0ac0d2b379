// Package authapi exposes the account HTTP surface: signup, login,
// logout, session check, and profile updates.
package authapi

import (
	"os"
	"strconv"
	"strings"
)

const (
	// Profile updates may carry a base64 image payload.
	defaultMaxBodyBytes = 10 << 20
)

// Config holds the auth HTTP settings.
type Config struct {
	MaxBodyBytes int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: defaultMaxBodyBytes}
}

// FromEnv loads config from NEXUS_AUTH_* variables.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := strings.TrimSpace(os.Getenv("NEXUS_AUTH_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	return cfg
}
