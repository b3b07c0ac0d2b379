// Package password implements Argon2id password hashing with a PHC-style
// encoded format and a small length policy.
//
// It is the single source of truth for hashing parameters; cmd/identity
// delegates here instead of carrying its own copy.
package password
