package password

import (
	"os"
	"strconv"
	"strings"
)

// Argon2idParams defines the Argon2id cost parameters used for hashing.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy bounds accepted plaintext passwords.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config bundles hashing parameters and the password policy.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the baseline configuration.
// The minimum length of 6 matches the historical signup contract.
func DefaultConfig() Config {
	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength: 6,
			MaxLength: 256,
		},
	}
}

// FromEnv returns DefaultConfig with optional env overrides applied.
// Invalid values fall back to defaults rather than weakening silently.
func FromEnv() Config {
	cfg := DefaultConfig()

	cfg.Params.MemoryKiB = envUint32("NEXUS_PASSWORD_MEMORY_KIB", cfg.Params.MemoryKiB)
	cfg.Params.Iterations = envUint32("NEXUS_PASSWORD_ITERATIONS", cfg.Params.Iterations)
	cfg.Policy.MinLength = envPosInt("NEXUS_PASSWORD_MIN_LENGTH", cfg.Policy.MinLength)
	cfg.Policy.MaxLength = envPosInt("NEXUS_PASSWORD_MAX_LENGTH", cfg.Policy.MaxLength)

	// Defensive minima so env overrides cannot push hashing below sane bounds.
	if cfg.Params.MemoryKiB < 8*1024 {
		cfg.Params.MemoryKiB = 8 * 1024
	}
	if cfg.Params.Iterations == 0 {
		cfg.Params.Iterations = 1
	}
	if cfg.Policy.MaxLength < cfg.Policy.MinLength {
		cfg.Policy.MaxLength = cfg.Policy.MinLength
	}

	return cfg
}

// Validate checks a plaintext password against the policy.
func (c Config) Validate(plain string) error {
	if len(plain) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if c.Policy.MaxLength > 0 && len(plain) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}

func envUint32(key string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		return def
	}
	return uint32(n)
}

func envPosInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
