package auth

import (
	"fmt"
	"strings"
)

// Role is the role claim carried by a credential.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole converts a claim value into a Role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// String implements fmt.Stringer
func (r Role) String() string {
	return string(r)
}

// RoleSet is an ordered set of roles allowed to perform an operation.
type RoleSet []Role

// NewRoleSet builds a RoleSet, dropping duplicates while keeping order.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if !set.Allows(r) {
			set = append(set, r)
		}
	}
	return set
}

// Allows reports whether role is a member of the set
func (s RoleSet) Allows(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// String renders the set as "teacher, admin"
func (s RoleSet) String() string {
	names := make([]string, len(s))
	for i, r := range s {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// Identity is the verified {id, role} pair attached to a request.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// HasRole reports whether the identity holds one of roles
func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	return RoleSet(roles).Allows(i.Role)
}
