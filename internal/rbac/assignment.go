package rbac

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRole indicates a role name outside the registry.
	ErrUnknownRole = errors.New("rbac: unknown role")
	// ErrEmptyAssignment indicates an assignment without any role.
	ErrEmptyAssignment = errors.New("rbac: empty role assignment")
)

// Assignment is a typed set of roles held by one user.
type Assignment struct {
	roles map[Role]struct{}
}

// ParseAssignment converts a stored comma-separated role string into an
// Assignment. Segments are trimmed, empty segments dropped and duplicates
// collapsed. Any unknown role fails the whole parse.
func ParseAssignment(raw string) (Assignment, error) {
	set := make(map[Role]struct{})
	for _, segment := range strings.Split(raw, AssignmentSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		role := Role(segment)
		if !role.Valid() {
			return Assignment{}, fmt.Errorf("%w: %q", ErrUnknownRole, segment)
		}
		set[role] = struct{}{}
	}
	if len(set) == 0 {
		return Assignment{}, ErrEmptyAssignment
	}
	return Assignment{roles: set}, nil
}

// MustParseAssignment is ParseAssignment for literals known to be valid.
func MustParseAssignment(raw string) Assignment {
	a, err := ParseAssignment(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAssignment builds an Assignment from roles, ignoring unknown ones.
func NewAssignment(roles ...Role) Assignment {
	set := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		if role.Valid() {
			set[role] = struct{}{}
		}
	}
	return Assignment{roles: set}
}

// IsEmpty reports whether the assignment holds no role.
func (a Assignment) IsEmpty() bool { return len(a.roles) == 0 }

// Has reports whether role is part of the assignment.
func (a Assignment) Has(role Role) bool {
	_, ok := a.roles[role]
	return ok
}

// HasAny reports whether the assignment intersects roles.
func (a Assignment) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if a.Has(role) {
			return true
		}
	}
	return false
}

// Can reports whether any held role grants c.
func (a Assignment) Can(c Capability) bool {
	for role := range a.roles {
		if granted(role, c) {
			return true
		}
	}
	return false
}

// Capabilities returns the union of all held roles' matrix rows. Every known
// capability is present in the result.
func (a Assignment) Capabilities() map[Capability]bool {
	out := make(map[Capability]bool, len(capabilities))
	for _, c := range capabilities {
		out[c] = a.Can(c)
	}
	return out
}

// Roles returns the held roles in registry order.
func (a Assignment) Roles() []Role {
	out := make([]Role, 0, len(a.roles))
	for _, role := range registry {
		if a.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

// String renders the canonical stored form, e.g. "editor,author".
func (a Assignment) String() string {
	roles := a.Roles()
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = string(role)
	}
	return strings.Join(parts, AssignmentSeparator)
}

// Canonical reports whether raw is already in the form String produces, and
// therefore evaluates identically under the raw-string evaluators.
func Canonical(raw string) bool {
	a, err := ParseAssignment(raw)
	if err != nil {
		return false
	}
	return a.String() == raw
}
