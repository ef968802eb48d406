package rbac

import "strings"

// AssignmentSeparator joins multiple roles in a stored role assignment.
const AssignmentSeparator = ","

// HasPermission reports whether any role in the comma-separated assignment
// grants c. Segments are matched verbatim: " editor" is not "editor".
// An empty assignment or an unknown role grants nothing.
func HasPermission(assignment string, c Capability) bool {
	if assignment == "" {
		return false
	}
	for _, candidate := range strings.Split(assignment, AssignmentSeparator) {
		if granted(Role(candidate), c) {
			return true
		}
	}
	return false
}

// HasRole reports whether any role in the comma-separated assignment is an
// exact, case-sensitive member of allowed.
func HasRole(assignment string, allowed ...Role) bool {
	if assignment == "" || len(allowed) == 0 {
		return false
	}
	for _, candidate := range strings.Split(assignment, AssignmentSeparator) {
		for _, role := range allowed {
			if Role(candidate) == role {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether the assignment grants at least one of caps.
func HasAnyPermission(assignment string, caps ...Capability) bool {
	for _, c := range caps {
		if HasPermission(assignment, c) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the assignment grants every one of caps.
// An empty caps list is satisfied by any non-empty assignment.
func HasAllPermissions(assignment string, caps ...Capability) bool {
	if assignment == "" {
		return false
	}
	for _, c := range caps {
		if !HasPermission(assignment, c) {
			return false
		}
	}
	return true
}

// RolesOf returns the registered roles named verbatim in the assignment, in
// assignment order. Segments that would not match in HasRole are skipped.
func RolesOf(assignment string) []Role {
	if assignment == "" {
		return nil
	}
	var out []Role
	for _, candidate := range strings.Split(assignment, AssignmentSeparator) {
		if role := Role(candidate); role.Valid() {
			out = append(out, role)
		}
	}
	return out
}
