package auth

import "time"

// User represents an account able to sign in. Role holds the stored role
// assignment, e.g. "editor,author".
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
