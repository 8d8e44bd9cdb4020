// Package model defines the data structures used throughout the application.
package model

import "time"

// Account represents a registered user account.
//
// PasswordHash is a versioned hash string (see internal/auth). It is never
// serialized to JSON; API responses use AccountSummary instead.
//
// DisplayName and AvatarURL are optional. The empty string is the zero value
// rather than a nullable pointer, which keeps them safe to render directly.
type Account struct {
	ID           int64     `json:"id"          db:"id"`
	Username     string    `json:"username"    db:"username"`
	PasswordHash string    `json:"-"           db:"password_hash"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	AvatarURL    string    `json:"avatarUrl"   db:"avatar_url"`
	CreatedAt    time.Time `json:"createdAt"   db:"created_at"`
}

// AccountSummary is the public shape of an account, returned by the
// register/login/update endpoints.
type AccountSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Summary returns the public view of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
	}
}
