package chat

import (
	"os"
	"strconv"
	"strings"
)

const (
	// Image payloads arrive as base64 data URIs inside the JSON body.
	defaultMaxBodyBytes = 10 << 20

	defaultMaxTextChars = 4096
)

// Config holds the messaging HTTP surface settings.
type Config struct {
	// MaxBodyBytes caps the send request body.
	MaxBodyBytes int64

	// MaxTextChars caps message text length in runes.
	MaxTextChars int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes: defaultMaxBodyBytes,
		MaxTextChars: defaultMaxTextChars,
	}
}

// FromEnv loads config from NEXUS_CHAT_* variables, falling back to
// defaults on absent or invalid values.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("NEXUS_CHAT_MAX_BODY_BYTES")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("NEXUS_CHAT_MAX_TEXT_CHARS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTextChars = n
		}
	}
	return cfg
}
