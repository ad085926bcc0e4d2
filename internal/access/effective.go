package access

// EffectiveRole is the single role used for authorization decisions at a
// given moment. It is either the identity's real collapsed grant or an
// admin-initiated impersonation, kept distinct so impersonated actions stay
// auditable.
type EffectiveRole struct {
	Role         Role
	Impersonated bool
}

// Real wraps a role derived from actual grants.
func Real(role Role) EffectiveRole {
	return EffectiveRole{Role: role}
}

// Impersonated wraps a session-scoped impersonation override.
func Impersonated(role Role) EffectiveRole {
	return EffectiveRole{Role: role, Impersonated: true}
}
