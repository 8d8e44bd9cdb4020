// Package service contains the business logic layer.
//
// Services sit between the HTTP handlers and the repositories: handlers parse
// requests and write responses, services validate and enforce the rules, and
// repositories talk to the store. Services depend on the repository
// interfaces, never on the sqlite package, so tests run against in-memory
// fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hayato-dev/discussboard/internal/apperror"
	"github.com/hayato-dev/discussboard/internal/auth"
	"github.com/hayato-dev/discussboard/internal/model"
	"github.com/hayato-dev/discussboard/internal/repository"
)

// duplicateUsernameMessage is returned when registration hits an existing
// username. Kept verbatim from the original frontend contract.
const duplicateUsernameMessage = "ユーザー名は既に存在します"

// AccountService handles registration, login and profile management.
type AccountService struct {
	accounts  repository.AccountRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAccountService(
	accounts repository.AccountRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account with a freshly hashed password.
//
// The username is trimmed and must be unique (exact, case-sensitive match).
// The pre-check gives a friendly message; if two registrations race past it,
// the store's UNIQUE constraint still rejects the second and is reported the
// same way. There is no password-strength policy.
func (s *AccountService) Register(ctx context.Context, username, password, displayName, avatarURL string) (*model.AccountSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	exists, err := s.accounts.ExistsUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/account: checking username %q: %w", username, err)
	}
	if exists {
		return nil, apperror.ValidationFailed("username", duplicateUsernameMessage)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  displayName,
		AvatarURL:    avatarURL,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost a race with a concurrent registration.
			return nil, apperror.ValidationFailed("username", duplicateUsernameMessage)
		}
		return nil, fmt.Errorf("service/account: creating account %q: %w", username, err)
	}

	s.logger.Info("account registered",
		slog.Int64("id", account.ID),
		slog.String("username", account.Username),
	)

	summary := account.Summary()
	return &summary, nil
}

// Login verifies the credentials and returns the account summary.
//
// Unknown username and wrong password both produce the same unauthorized
// error, so the response cannot be used to enumerate usernames.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.AccountSummary, error) {
	username = strings.TrimSpace(username)

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized()
		}
		return nil, fmt.Errorf("service/account: looking up %q: %w", username, err)
	}

	if !s.passwords.Verify(password, account.PasswordHash) {
		return nil, apperror.Unauthorized()
	}

	s.logger.Info("login succeeded",
		slog.Int64("id", account.ID),
		slog.String("username", account.Username),
	)

	summary := account.Summary()
	return &summary, nil
}

// UpdateProfile overwrites the display name and avatar URL. There is no
// caller-identity check: the API trusts the supplied id (no session model).
func (s *AccountService) UpdateProfile(ctx context.Context, id int64, displayName, avatarURL string) (*model.AccountSummary, error) {
	if err := s.accounts.UpdateProfile(ctx, id, displayName, avatarURL); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/account: updating profile %d: %w", id, err)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/account: reloading account %d: %w", id, err)
	}

	summary := account.Summary()
	return &summary, nil
}

// ChangePassword verifies the current password and stores a new versioned
// hash. This is also the only path that migrates a legacy hash to the
// current scheme.
func (s *AccountService) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperror.ValidationFailed("newPassword", "new password is required")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/account: loading account %d: %w", id, err)
	}

	if !s.passwords.Verify(currentPassword, account.PasswordHash) {
		return apperror.ValidationFailed("currentPassword", "current password is incorrect")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/account: hashing new password: %w", err)
	}

	if err := s.accounts.UpdatePasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("service/account: storing new password for %d: %w", id, err)
	}

	s.logger.Info("password changed", slog.Int64("id", id))
	return nil
}

// CheckUsernameAvailable reports whether the trimmed username can still be
// registered. An empty username is a validation error, not "unavailable".
func (s *AccountService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, apperror.ValidationFailed("username", "username is required")
	}

	exists, err := s.accounts.ExistsUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("service/account: checking username %q: %w", username, err)
	}
	return !exists, nil
}
