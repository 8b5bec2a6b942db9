package models

import "strings"

// Role is the closed set of account kinds a profile can have
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
	RoleAdmin  Role = "admin"
)

// ParseRole resolves a user_type metadata value. Unknown or empty values
// resolve to RoleParent, the default for freshly created profiles.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleChild:
		return RoleChild
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleParent
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild || r == RoleAdmin
}

// SignupRoles are the roles a visitor may pick on the signup form
func SignupRoles() []Role {
	return []Role{RoleParent, RoleChild}
}

// Label returns the display label for a role
func (r Role) Label() string {
	switch r {
	case RoleChild:
		return "Learner"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Parent"
	}
}
