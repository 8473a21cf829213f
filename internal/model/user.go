// Package model defines the data structures used throughout the application.
package model

import "time"

// Role controls what a user may see and manage. It is a closed set known at
// compile time — the persistence layer stores it as TEXT and validates on read.
//
// WHY A STRING TYPE (not iota int)?
// The role ends up in JSON responses and log lines. A named string type gives
// readable values everywhere ("admin", not 1) while the compiler still stops
// you from passing an arbitrary string where a Role is expected.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRegular
}

// User represents a registered account.
//
// A user signs up with email/password or via GitHub OAuth. OAuth-only
// accounts have an empty PasswordHash and a non-zero GitHubID. The role is
// assigned once (startup promotes the configured admin email) and is never
// mutable through the API.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialized
	GitHubID     int64     `json:"-"` // 0 for password accounts
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
// Nil-safe so callers can pass an anonymous (nil) viewer.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
