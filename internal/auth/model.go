// Package auth implements the credential and session layer: the registered
// user table, the active session pointer, password hashing, and identifier
// uniqueness. It persists through the kvstore primitive under the two
// original storage keys.
package auth

import "time"

// UserRecord is a registered user as stored. Email is kept normalized
// (trimmed, lowercase) and unique; Username is trimmed and unique.
// PasswordHash never leaves this package: read operations return the
// PublicUser projection instead.
type UserRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	Purpose      []string  `json:"purpose"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the caller-facing projection of a UserRecord with the
// password hash stripped.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Purpose   []string  `json:"purpose"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public projects the record for callers outside this package.
func (u UserRecord) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Purpose:   append([]string(nil), u.Purpose...),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
