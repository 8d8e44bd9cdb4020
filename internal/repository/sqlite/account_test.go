package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/hayato-dev/discussboard/internal/apperror"
	"github.com/hayato-dev/discussboard/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database that is
// destroyed when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestAccount creates an account and fails the test on error.
func createTestAccount(t *testing.T, db *DB, username string) *model.Account {
	t.Helper()
	account := &model.Account{
		Username:     username,
		PasswordHash: "pbkdf2$100$c2FsdHNhbHRzYWx0c2FsdA==$aGFzaA==",
		DisplayName:  username + " display",
	}
	if err := db.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestAccountCreate(t *testing.T) {
	db := newTestDB(t)

	account := &model.Account{
		Username:     "alice",
		PasswordHash: "hash",
		DisplayName:  "Alice",
		AvatarURL:    "https://example.com/a.png",
	}

	if err := db.Create(context.Background(), account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if account.ID == 0 {
		t.Error("Create() did not set account.ID")
	}
	if account.CreatedAt.IsZero() {
		t.Error("Create() did not set account.CreatedAt")
	}
}

func TestAccountCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestAccount(t, db, "alice")

	dup := &model.Account{Username: "alice", PasswordHash: "other"}
	err := db.Create(context.Background(), dup)
	if err == nil {
		t.Fatal("Create() should have failed on duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestAccountGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestAccount(t, db, "bob")

	found, err := db.GetByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
	if found.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, created.PasswordHash)
	}
}

func TestAccountGetByUsername_CaseSensitive(t *testing.T) {
	db := newTestDB(t)
	createTestAccount(t, db, "Carol")

	// Lookup is an exact match: "carol" must not find "Carol".
	_, err := db.GetByUsername(context.Background(), "carol")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername(\"carol\") error = %v, want ErrNotFound", err)
	}
}

func TestAccountGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestAccountExistsUsername(t *testing.T) {
	db := newTestDB(t)
	createTestAccount(t, db, "dave")

	exists, err := db.ExistsUsername(context.Background(), "dave")
	if err != nil {
		t.Fatalf("ExistsUsername() error = %v", err)
	}
	if !exists {
		t.Error("ExistsUsername(\"dave\") = false, want true")
	}

	exists, err = db.ExistsUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ExistsUsername() error = %v", err)
	}
	if exists {
		t.Error("ExistsUsername(\"nobody\") = true, want false")
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestAccountUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	created := createTestAccount(t, db, "erin")

	err := db.UpdateProfile(context.Background(), created.ID, "Erin E.", "https://example.com/e.png")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.DisplayName != "Erin E." {
		t.Errorf("DisplayName = %q, want %q", found.DisplayName, "Erin E.")
	}
	if found.AvatarURL != "https://example.com/e.png" {
		t.Errorf("AvatarURL = %q", found.AvatarURL)
	}
}

func TestAccountUpdateProfile_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateProfile(context.Background(), 12345, "x", "y")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}

func TestAccountUpdatePasswordHash(t *testing.T) {
	db := newTestDB(t)
	created := createTestAccount(t, db, "frank")

	if err := db.UpdatePasswordHash(context.Background(), created.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePasswordHash() error = %v", err)
	}

	found, _ := db.GetByID(context.Background(), created.ID)
	if found.PasswordHash != "newhash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "newhash")
	}
}
