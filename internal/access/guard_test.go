package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settled(identity string, role Role) Snapshot {
	return Snapshot{IdentityID: identity, Role: Real(role), RoleKnown: true}
}

func TestNamespaceOf(t *testing.T) {
	cases := map[string]Namespace{
		"/auth":               NamespacePublic,
		"/auth/reset":         NamespacePublic,
		"/tenant":             NamespaceTenant,
		"/tenant/maintenance": NamespaceTenant,
		"/admin":              NamespaceAdmin,
		"/admin/users":        NamespaceAdmin,
		"/":                   NamespaceOperator,
		"/billing":            NamespaceOperator,
		"/properties/42":      NamespaceOperator,
		"/tenants":            NamespaceOperator, // operator's tenant directory, not the tenant area
		"/authors":            NamespaceOperator, // prefix match must be segment-aware
	}
	for path, want := range cases {
		assert.Equal(t, want, NamespaceOf(path), "path %s", path)
	}
}

func TestDecideLoadingWinsOverEverything(t *testing.T) {
	for _, path := range []string{"/", "/auth", "/tenant", "/admin/users", "/billing"} {
		assert.Equal(t, DecisionLoading, Decide(path, Snapshot{AuthLoading: true}))
		assert.Equal(t, DecisionLoading, Decide(path, Snapshot{RoleLoading: true, IdentityID: "u1", Role: Real(RoleAdmin), RoleKnown: true}))
	}
}

func TestDecideUnauthenticated(t *testing.T) {
	for _, path := range []string{"/", "/billing", "/tenant", "/tenant/maintenance", "/admin", "/properties"} {
		assert.Equal(t, DecisionRedirectAuth, Decide(path, Snapshot{}), "path %s", path)
	}
	// The public auth path is the single exception.
	assert.Equal(t, DecisionAllow, Decide("/auth", Snapshot{}))
	assert.Equal(t, DecisionAllow, Decide("/auth/register", Snapshot{}))
}

func TestDecideAuthPathAllowedForEveryRole(t *testing.T) {
	for _, role := range Roles() {
		assert.Equal(t, DecisionAllow, Decide("/auth", settled("u1", role)), "role %s", role)
	}
}

func TestDecideTenantNamespaceBlocksNonTenants(t *testing.T) {
	for _, role := range []Role{RoleSystem, RoleAdmin, RoleLandlord, RoleManager, RoleAgent} {
		for _, path := range []string{"/tenant", "/tenant/maintenance", "/tenant/invoices/7"} {
			assert.Equal(t, DecisionRedirectHome, Decide(path, settled("u1", role)),
				"role %s path %s", role, path)
		}
	}
}

func TestDecideOperatorNamespaceBlocksTenants(t *testing.T) {
	for _, path := range []string{"/billing", "/properties", "/leases/3", "/tickets"} {
		assert.Equal(t, DecisionRedirectTenantHome, Decide(path, settled("u1", RoleTenant)), "path %s", path)
	}
}

func TestDecideAdminNamespaceRequiresAdmin(t *testing.T) {
	for _, role := range []Role{RoleLandlord, RoleManager, RoleAgent} {
		assert.Equal(t, DecisionRedirectHome, Decide("/admin/users", settled("u1", role)), "role %s", role)
	}
	assert.Equal(t, DecisionAllow, Decide("/admin/users", settled("u1", RoleAdmin)))
	assert.Equal(t, DecisionAllow, Decide("/admin/users", settled("u1", RoleSystem)))
	// Tenants hit the tenant rule first by namespace, still end up away from admin.
	assert.Equal(t, DecisionRedirectHome, Decide("/admin/users", settled("u1", RoleTenant)))
}

func TestDecideRootPathPerRole(t *testing.T) {
	assert.Equal(t, DecisionRedirectTenantHome, Decide("/", settled("u1", RoleTenant)))
	assert.Equal(t, DecisionRedirectAdminHome, Decide("/", settled("u1", RoleAdmin)))
	for _, role := range []Role{RoleLandlord, RoleManager, RoleAgent} {
		assert.Equal(t, DecisionAllow, Decide("/", settled("u1", role)), "role %s", role)
	}
}

func TestDecideRoleUnknownIsConservative(t *testing.T) {
	unknown := Snapshot{IdentityID: "u1"}
	assert.Equal(t, DecisionAllow, Decide("/", unknown))
	for _, path := range []string{"/billing", "/tenant", "/admin", "/admin/users", "/properties"} {
		assert.Equal(t, DecisionRedirectHome, Decide(path, unknown), "path %s", path)
	}
}

func TestDecideIsPure(t *testing.T) {
	snap := settled("u1", RoleLandlord)
	first := Decide("/admin/users", snap)
	second := Decide("/admin/users", snap)
	assert.Equal(t, first, second)
	assert.Equal(t, settled("u1", RoleLandlord), snap, "snapshot must not be mutated")
}

func TestDecideImpersonatedRoleRoutesLikeRealRole(t *testing.T) {
	imp := Snapshot{IdentityID: "admin-1", Role: Impersonated(RoleTenant), RoleKnown: true}
	assert.Equal(t, DecisionRedirectTenantHome, Decide("/", imp))
	assert.Equal(t, DecisionAllow, Decide("/tenant/maintenance", imp))
	assert.Equal(t, DecisionRedirectHome, Decide("/admin/users", imp))
}

func TestScenarioTenantLogin(t *testing.T) {
	tenant := settled("t-1", RoleTenant)
	require.Equal(t, DecisionRedirectTenantHome, Decide("/", tenant))
	require.Equal(t, DecisionAllow, Decide("/tenant/maintenance", tenant))
}

func TestScenarioLandlordBlockedFromAdmin(t *testing.T) {
	require.Equal(t, DecisionRedirectHome, Decide("/admin/users", settled("l-1", RoleLandlord)))
}

func TestScenarioUnauthenticatedBilling(t *testing.T) {
	require.Equal(t, DecisionRedirectAuth, Decide("/billing", Snapshot{}))
	require.Equal(t, DecisionAllow, Decide("/auth", Snapshot{}))
}

func TestDecisionTargets(t *testing.T) {
	assert.Equal(t, "/auth", DecisionRedirectAuth.Target())
	assert.Equal(t, "/", DecisionRedirectHome.Target())
	assert.Equal(t, "/tenant", DecisionRedirectTenantHome.Target())
	assert.Equal(t, "/admin", DecisionRedirectAdminHome.Target())
	assert.Empty(t, DecisionAllow.Target())
	assert.Empty(t, DecisionLoading.Target())
}
