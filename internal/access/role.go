// Package access implements the role resolution and route guarding layer.
//
// Every navigation and API call is authorized against a single effective
// role derived from the identity's role grants, with an optional admin
// impersonation override. Precedence between grants is an explicit ordered
// table rather than conditional fallthrough, so the rules are data and can
// be tested in isolation.
package access

import (
	"fmt"
	"strings"
)

// Role is a role tag granted to an identity.
type Role string

const (
	RoleSystem   Role = "system"
	RoleAdmin    Role = "admin"
	RoleLandlord Role = "landlord"
	RoleManager  Role = "manager"
	RoleAgent    Role = "agent"
	RoleTenant   Role = "tenant"
)

// precedence orders roles from strongest to weakest. An identity holding
// several grants is collapsed to the first matching entry. Tenant sits last:
// an identity with any operator grant is routed as an operator, never as a
// tenant.
var precedence = []Role{
	RoleSystem,
	RoleAdmin,
	RoleLandlord,
	RoleManager,
	RoleAgent,
	RoleTenant,
}

// ParseRole validates a raw role tag.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range precedence {
		if role == known {
			return role, nil
		}
	}
	return "", fmt.Errorf("access: unknown role %q", raw)
}

// Collapse reduces a set of grants to the single highest-precedence role.
// The second return is false when the set is empty.
func Collapse(grants []Role) (Role, bool) {
	held := make(map[Role]struct{}, len(grants))
	for _, g := range grants {
		held[g] = struct{}{}
	}
	for _, role := range precedence {
		if _, ok := held[role]; ok {
			return role, true
		}
	}
	return "", false
}

// IsOperator reports whether the role belongs to the operator namespace.
// System accounts are treated as operators with admin reach.
func (r Role) IsOperator() bool {
	switch r {
	case RoleSystem, RoleAdmin, RoleLandlord, RoleManager, RoleAgent:
		return true
	}
	return false
}

// IsAdmin reports whether the role unlocks the admin namespace.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSystem
}

// Roles lists all known role tags in precedence order.
func Roles() []Role {
	out := make([]Role, len(precedence))
	copy(out, precedence)
	return out
}
