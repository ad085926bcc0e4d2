package access

import "strings"

// Well-known paths. RedirectHome targets the operator dashboard root.
const (
	PathRoot       = "/"
	PathAuth       = "/auth"
	PathTenantHome = "/tenant"
	PathAdminHome  = "/admin"
)

// Namespace partitions the URL path space into authorization boundaries.
type Namespace int

const (
	NamespacePublic Namespace = iota
	NamespaceTenant
	NamespaceOperator
	NamespaceAdmin
)

func (n Namespace) String() string {
	switch n {
	case NamespacePublic:
		return "public"
	case NamespaceTenant:
		return "tenant"
	case NamespaceOperator:
		return "operator"
	case NamespaceAdmin:
		return "admin"
	}
	return "unknown"
}

// NamespaceOf classifies a path. Everything that is not the public auth
// path, the tenant area or the admin area belongs to the operator area.
func NamespaceOf(path string) Namespace {
	switch {
	case inSubtree(path, PathAuth):
		return NamespacePublic
	case inSubtree(path, PathTenantHome):
		return NamespaceTenant
	case inSubtree(path, PathAdminHome):
		return NamespaceAdmin
	}
	return NamespaceOperator
}

func inSubtree(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

// Decision is the guard's verdict for a single navigation.
type Decision int

const (
	DecisionLoading Decision = iota
	DecisionAllow
	DecisionRedirectAuth
	DecisionRedirectHome
	DecisionRedirectTenantHome
	DecisionRedirectAdminHome
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectAuth:
		return "redirect_auth"
	case DecisionRedirectHome:
		return "redirect_home"
	case DecisionRedirectTenantHome:
		return "redirect_tenant_home"
	case DecisionRedirectAdminHome:
		return "redirect_admin_home"
	}
	return "unknown"
}

// Target returns the navigation target for redirect decisions, empty for
// Allow and Loading. Clients must apply it as a replace navigation.
func (d Decision) Target() string {
	switch d {
	case DecisionRedirectAuth:
		return PathAuth
	case DecisionRedirectHome:
		return PathRoot
	case DecisionRedirectTenantHome:
		return PathTenantHome
	case DecisionRedirectAdminHome:
		return PathAdminHome
	}
	return ""
}

// Snapshot is the immutable guard input for one navigation: identity plus
// resolved role plus upstream loading flags. The surrounding application
// refreshes it on auth-state changes; Decide itself never mutates state.
type Snapshot struct {
	IdentityID  string
	Role        EffectiveRole
	RoleKnown   bool
	AuthLoading bool
	RoleLoading bool
}

// Authenticated reports whether the snapshot carries an identity.
func (s Snapshot) Authenticated() bool {
	return s.IdentityID != ""
}

// Decide returns exactly one decision for the requested path.
//
// Rule order is load-bearing: the root-path cases run before the generic
// namespace checks. For a tenant on "/" both rules yield the same redirect
// today; both are kept so future per-role root branching cannot silently
// change the namespace rules.
func Decide(path string, snap Snapshot) Decision {
	if snap.AuthLoading || snap.RoleLoading {
		return DecisionLoading
	}

	// The public auth path is reachable by everyone, always.
	if NamespaceOf(path) == NamespacePublic {
		return DecisionAllow
	}

	if !snap.Authenticated() {
		return DecisionRedirectAuth
	}

	// Role lookup failed or the identity holds no grants: keep the shell
	// usable on the dashboard root, deny everything privileged.
	if !snap.RoleKnown {
		if path == PathRoot {
			return DecisionAllow
		}
		return DecisionRedirectHome
	}

	role := snap.Role.Role

	if path == PathRoot {
		switch {
		case role == RoleTenant:
			return DecisionRedirectTenantHome
		case role.IsAdmin():
			return DecisionRedirectAdminHome
		default:
			return DecisionAllow
		}
	}

	switch NamespaceOf(path) {
	case NamespaceTenant:
		if role != RoleTenant {
			return DecisionRedirectHome
		}
	case NamespaceOperator:
		if role == RoleTenant {
			return DecisionRedirectTenantHome
		}
	case NamespaceAdmin:
		if !role.IsAdmin() {
			return DecisionRedirectHome
		}
	}

	return DecisionAllow
}
