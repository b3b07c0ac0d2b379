package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is the dev/test fallback used when no database is configured.
// It honors the same conflict and not-found semantics as PostgresStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*memUser
	byEmail map[string]*memUser
}

type memUser struct {
	user         User
	passwordHash string
}

// NewInMemoryStore constructs an in-memory identity Store implementation.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]*memUser),
		byEmail: make(map[string]*memUser),
	}
}

// CreateUser hashes the password and creates the account.
func (s *InMemoryStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := NormalizeEmail(in.Email)
	fullName := NormalizeFullName(in.FullName)
	if email == "" || fullName == "" {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email and full_name are required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	pwHash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return User{}, ConflictError{Op: op, Field: "email"}
	}

	u := &memUser{
		user: User{
			ID:        userID,
			Email:     email,
			FullName:  fullName,
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: pwHash,
	}
	s.byID[userID] = u
	s.byEmail[email] = u

	return u.user, nil
}

// GetUserByID loads a user by id.
func (s *InMemoryStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return u.user, nil
}

// GetUserAuthByEmail loads a user plus password hash by normalized email.
func (s *InMemoryStore) GetUserAuthByEmail(ctx context.Context, email string) (UserAuth, error) {
	const op = "identity.GetUserAuthByEmail"

	if err := ctx.Err(); err != nil {
		return UserAuth{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return UserAuth{}, NotFoundError{Op: op, Resource: "user"}
	}
	return UserAuth{User: u.user, PasswordHash: u.passwordHash}, nil
}

// ListUsersExcept returns all users except the given one, full name ascending.
func (s *InMemoryStore) ListUsersExcept(ctx context.Context, userID string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]User, 0, len(s.byID))
	for id, u := range s.byID {
		if id == userID {
			continue
		}
		out = append(out, u.user)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateProfile applies a partial profile update and returns the new record.
func (s *InMemoryStore) UpdateProfile(ctx context.Context, in UpdateProfileInput) (User, error) {
	const op = "identity.UpdateProfile"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if in.FullName == nil && in.Bio == nil && in.ProfilePic == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "no fields to update"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[strings.TrimSpace(in.UserID)]
	if !ok {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}

	if in.FullName != nil {
		if v := NormalizeFullName(*in.FullName); v != "" {
			u.user.FullName = v
		}
	}
	if in.Bio != nil {
		u.user.Bio = *in.Bio
	}
	if in.ProfilePic != nil {
		u.user.ProfilePic = *in.ProfilePic
	}
	u.user.UpdatedAt = now

	return u.user, nil
}
