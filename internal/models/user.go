package models

import "time"

// User represents an account that can sign in
type User struct {
	ID           uint64 `boltholdKey:"ID"`
	Email        string `boltholdIndex:"Email"`
	PasswordHash string

	CreatedAt time.Time
}

// UserRole assigns a role to a user
type UserRole struct {
	ID     uint64 `boltholdKey:"ID"`
	UserID uint64 `boltholdIndex:"UserID"`
	Role   Role
}

// Session represents a signed-in browser session, keyed by its token
type Session struct {
	Token  string `boltholdKey:"Token"`
	UserID uint64
	Email  string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
