package session

import "errors"

var (
	// ErrWeakSecret rejects signing secrets shorter than 32 bytes.
	ErrWeakSecret = errors.New("session: signing secret too short")

	// ErrInvalidConfig rejects unusable issuance settings.
	ErrInvalidConfig = errors.New("session: invalid config")

	// ErrTokenInvalid covers malformed, mis-signed, and wrong-issuer tokens.
	ErrTokenInvalid = errors.New("session: invalid token")

	// ErrTokenExpired marks tokens past their expiry.
	ErrTokenExpired = errors.New("session: token expired")
)
