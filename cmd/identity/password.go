package identity

import (
	"errors"

	"nexus/cmd/security/password"
)

// Password hashing delegates to cmd/security/password so that identity can
// never drift from the canonical Argon2id parameters and length policy.

// HashPassword returns a PHC-style Argon2id hash string for a plaintext password.
func HashPassword(plain string) (string, error) {
	cfg := password.FromEnv()

	enc, err := cfg.Hash(plain)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too short"}
		case errors.Is(err, password.ErrPasswordTooLong):
			return "", OpError{Op: "identity.HashPassword", Kind: ErrInvalidInput, Msg: "password too long"}
		default:
			return "", err
		}
	}
	return enc, nil
}

// VerifyPassword checks a plaintext password against a PHC Argon2id hash.
// A malformed hash is reported as a mismatch plus error, never as a match.
func VerifyPassword(plain, encodedPHC string) (bool, error) {
	cfg := password.FromEnv()

	ok, err := cfg.Verify(encodedPHC, plain)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			return false, errors.New("invalid argon2id hash format")
		}
		return false, err
	}
	return ok, nil
}
