// Package session issues and verifies the bearer tokens that
// authenticate Nexus API requests. Tokens are HS256 JWTs carried either
// in an Authorization header or in the session cookie.
package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL matches the historical seven-day session lifetime.
	DefaultTTL = 7 * 24 * time.Hour

	DefaultIssuer = "nexus"

	// DefaultCookieName is the session cookie key.
	DefaultCookieName = "jwt"

	minSecretBytes = 32
)

// Config holds token issuance and cookie settings.
type Config struct {
	// Secret signs and verifies tokens. At least 32 bytes.
	Secret []byte

	TTL    time.Duration
	Issuer string

	CookieName string
	// CookieSecure marks the cookie Secure and SameSite=None, the
	// cross-site production posture. Off for local HTTP development.
	CookieSecure bool
}

// DefaultConfig returns defaults without a secret. Callers must set one.
func DefaultConfig() Config {
	return Config{
		TTL:        DefaultTTL,
		Issuer:     DefaultIssuer,
		CookieName: DefaultCookieName,
	}
}

// FromEnv loads config from NEXUS_JWT_* and NEXUS_COOKIE_* variables.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("NEXUS_JWT_SECRET")); v != "" {
		cfg.Secret = []byte(v)
	}
	if v := strings.TrimSpace(os.Getenv("NEXUS_JWT_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("NEXUS_JWT_ISSUER")); v != "" {
		cfg.Issuer = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXUS_COOKIE_NAME")); v != "" {
		cfg.CookieName = v
	}
	if v := strings.TrimSpace(os.Getenv("NEXUS_COOKIE_SECURE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}
	return cfg
}

// Validate checks the config is usable for issuing tokens.
func (c Config) Validate() error {
	if len(c.Secret) < minSecretBytes {
		return ErrWeakSecret
	}
	if c.TTL <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
