// Package identity implements the user account foundation of Nexus:
// the canonical User record, password hashing, normalization rules,
// and the persistence boundary used by the HTTP and WebSocket layers.
package identity
