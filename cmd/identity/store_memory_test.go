package identity

import (
	"context"
	"testing"
)

func TestInMemoryStore_CreateAndLogin(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{
		Email:    "  Alice@Example.COM ",
		FullName: "  Alice   Anderson ",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.FullName != "Alice Anderson" {
		t.Fatalf("full name not normalized: %q", u.FullName)
	}
	if len(u.ID) != 26 {
		t.Fatalf("expected ULID id, got %q", u.ID)
	}

	ua, err := s.GetUserAuthByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserAuthByEmail: %v", err)
	}
	ok, err := VerifyPassword("secret123", ua.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("password verify failed: ok=%v err=%v", ok, err)
	}
}

func TestInMemoryStore_DuplicateEmailConflicts(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, CreateUserInput{Email: "bob@example.com", FullName: "Bob", Password: "secret123"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := s.CreateUser(ctx, CreateUserInput{Email: "BOB@example.com", FullName: "Bobby", Password: "secret456"})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestInMemoryStore_WeakPasswordRejected(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.CreateUser(context.Background(), CreateUserInput{Email: "c@example.com", FullName: "C", Password: "short"})
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestInMemoryStore_ListUsersExcept_SortedByName(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	me, err := s.CreateUser(ctx, CreateUserInput{Email: "me@example.com", FullName: "Zed", Password: "secret123"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	for _, in := range []CreateUserInput{
		{Email: "c@example.com", FullName: "Cara", Password: "secret123"},
		{Email: "a@example.com", FullName: "Abe", Password: "secret123"},
		{Email: "b@example.com", FullName: "Ben", Password: "secret123"},
	} {
		if _, err := s.CreateUser(ctx, in); err != nil {
			t.Fatalf("CreateUser(%s): %v", in.Email, err)
		}
	}

	got, err := s.ListUsersExcept(ctx, me.ID)
	if err != nil {
		t.Fatalf("ListUsersExcept: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 users, got %d", len(got))
	}
	wantOrder := []string{"Abe", "Ben", "Cara"}
	for i, w := range wantOrder {
		if got[i].FullName != w {
			t.Fatalf("position %d: got %q want %q", i, got[i].FullName, w)
		}
	}
	for _, u := range got {
		if u.ID == me.ID {
			t.Fatalf("caller must be excluded from the sidebar list")
		}
	}
}

func TestInMemoryStore_UpdateProfile(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, CreateUserInput{Email: "d@example.com", FullName: "Dee", Password: "secret123"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	pic := "https://cdn.example.com/pic.png"
	bio := "hello"
	got, err := s.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID, ProfilePic: &pic, Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.ProfilePic != pic || got.Bio != bio {
		t.Fatalf("profile not updated: %+v", got)
	}
	if got.FullName != "Dee" {
		t.Fatalf("unset field must be unchanged, got %q", got.FullName)
	}

	if _, err := s.UpdateProfile(ctx, UpdateProfileInput{UserID: u.ID}); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for empty update, got %v", err)
	}
	if _, err := s.UpdateProfile(ctx, UpdateProfileInput{UserID: "missing", Bio: &bio}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
