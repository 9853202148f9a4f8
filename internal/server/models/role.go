package models

import "github.com/storerate/storerate/internal/common"

// Role is the closed set of account roles. Role checks go through the
// authz package rather than ad hoc string comparisons.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

// ParseRole converts an external string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOwner, RoleUser:
		return Role(s), nil
	default:
		return "", common.ValidationError("unknown role %q", s)
	}
}
