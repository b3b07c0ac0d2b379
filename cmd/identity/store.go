package identity

import (
	"context"
	"time"
)

// User is the canonical account record.
type User struct {
	ID       string
	Email    string
	FullName string

	ProfilePic string
	Bio        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserAuth carries a User together with its password hash.
// It exists only for the login path; the hash must never leave the auth layer.
type UserAuth struct {
	User         User
	PasswordHash string
}

// CreateUserInput describes a signup request.
type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Now      time.Time
}

// UpdateProfileInput describes a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID     string
	FullName   *string
	Bio        *string
	ProfilePic *string
	Now        time.Time
}

// Store is the identity persistence boundary.
type Store interface {
	// CreateUser hashes the password and creates the account.
	// Returns ConflictError{Field:"email"} when the normalized email exists.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByID loads a user by id.
	GetUserByID(ctx context.Context, id string) (User, error)

	// GetUserAuthByEmail loads a user plus password hash by normalized email.
	GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error)

	// ListUsersExcept returns all users except the given one,
	// sorted by full name ascending (the contact sidebar contract).
	ListUsersExcept(ctx context.Context, userID string) ([]User, error)

	// UpdateProfile applies a partial profile update and returns the new record.
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (User, error)
}
