package models

import "fmt"

// Role is the closed set of platform roles. The ordering is part of the
// type: a role's privileges always include those of every lower role.
type Role string

const (
	RoleUser         Role = "user"
	RoleCollaborator Role = "collaborator"
	RoleModerator    Role = "moderator"
	RoleEditor       Role = "editor"
	RoleAdmin        Role = "admin"
)

// Level returns the role's position in the privilege order, starting at 1
// for RoleUser. Unknown roles map to 0 and therefore satisfy no privilege
// check.
func (r Role) Level() int {
	switch r {
	case RoleUser:
		return 1
	case RoleCollaborator:
		return 2
	case RoleModerator:
		return 3
	case RoleEditor:
		return 4
	case RoleAdmin:
		return 5
	default:
		return 0
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r carries at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r.Level() >= required.Level()
}

// ParseRole converts a stored or transmitted role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
