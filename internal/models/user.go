// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether s names one of the closed set of roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// DefaultAvatar is the placeholder avatar assigned to new accounts.
const DefaultAvatar = "default-avatar.png"

// User represents a registered account. The password hash and TOTP secret
// are never serialized into API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	Name         string    `json:"name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModify reports whether the user may update or delete the given post.
// Permitted for the post's author and for admins.
func (u *User) CanModify(p *Post) bool {
	if u == nil || p == nil {
		return false
	}
	return u.ID == p.AuthorID || u.IsAdmin()
}

// Summary returns the restricted field subset exposed when the user is
// populated into another entity's response. Sensitive fields (email,
// password hash, TOTP secret) are excluded.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}

// UserSummary is the populated representation of a referenced user.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name,omitempty"`
	Avatar   string    `json:"avatar"`
}
