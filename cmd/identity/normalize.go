package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Uniqueness is enforced on the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeFullName trims surrounding whitespace and collapses inner runs.
func NormalizeFullName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
