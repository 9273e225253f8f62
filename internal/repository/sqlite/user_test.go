package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	intro := "hello, I tweet sometimes"
	user := &model.User{
		UserID:           "alice",
		Email:            "alice@example.com",
		PasswordHash:     "$2a$04$somethinghashedgoeshere000000000000000000000000000000",
		UserName:         "Alice",
		SelfIntroduction: &intro,
	}

	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// Verify the user was modified in-place (pointer receiver)
	if user.ID == 0 {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{
		UserID:       "bob",
		Email:        "alice@example.com", // same e-mail, different handle
		PasswordHash: "x",
		UserName:     "Bob",
	}

	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser(duplicate e_mail) error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_DuplicateUserID(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{
		UserID:       "alice", // same handle, different e-mail
		Email:        "alice2@example.com",
		PasswordHash: "x",
		UserName:     "Alice Again",
	}

	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser(duplicate user_id) error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByEmail_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByEmail() returned nil for an existing user")
	}
	if got.UserID != created.UserID || got.UserName != created.UserName {
		t.Errorf("GetByEmail() = %+v, want user_id=%q user_name=%q", got, created.UserID, created.UserName)
	}
	if got.PasswordHash == "" {
		t.Error("GetByEmail() must return the stored hash for login verification")
	}
}

func TestGetByEmail_Missing(t *testing.T) {
	db := newTestDB(t)

	// A miss is (nil, nil), not an error — the caller decides whether
	// "no such user" is worth reporting.
	got, err := db.GetByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByEmail(missing) = %+v, want nil", got)
	}
}

func TestGetByUserID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	got, err := db.GetByUserID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByUserID() returned nil for an existing user")
	}
	if got.Email != "alice@example.com" {
		t.Errorf("GetByUserID() Email = %q, want %q", got.Email, "alice@example.com")
	}
}

func TestGetByUserID_NullableFields(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice") // no optional profile fields

	got, err := db.GetByUserID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.PhoneNumber != nil || got.SelfIntroduction != nil || got.Birthday != nil {
		t.Error("optional fields should round-trip as nil when never set")
	}
}
