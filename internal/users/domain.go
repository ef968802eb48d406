package users

import (
	"errors"
	"time"
)

var (
	// ErrLastSuperAdmin blocks demoting the only remaining super-admin.
	ErrLastSuperAdmin = errors.New("users: cannot demote the last super-admin")
	// ErrSuperAdminRequired guards granting or revoking super-admin.
	ErrSuperAdminRequired = errors.New("users: only a super-admin may grant or revoke super-admin")
)

// User represents a user account for management. Role is the stored role
// assignment.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserInput carries the fields accepted when creating an account.
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=200"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangeRoleInput carries a new role assignment, e.g. "editor,author".
type ChangeRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// Actor identifies who performs an administrative change.
type Actor struct {
	ID         int64
	Assignment string
}

// RoleChange describes a committed role assignment update.
type RoleChange struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	ActorID  int64  `json:"actor_id"`
}

// NormalizeResult reports a stored assignment that is not in canonical form.
type NormalizeResult struct {
	UserID    int64
	Email     string
	Stored    string
	Canonical string
	Err       error
	Applied   bool
}
