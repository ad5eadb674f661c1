package domain

import "time"

// User is an account that owns bookmarks. Username and email are unique
// across all users; PasswordHash is a bcrypt hash, never the raw password.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
