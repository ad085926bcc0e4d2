package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Landlord ")
	require.NoError(t, err)
	assert.Equal(t, RoleLandlord, role)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestCollapsePrecedence(t *testing.T) {
	cases := []struct {
		name   string
		grants []Role
		want   Role
	}{
		{"single tenant", []Role{RoleTenant}, RoleTenant},
		{"operator beats tenant", []Role{RoleTenant, RoleAgent}, RoleAgent},
		{"admin beats landlord", []Role{RoleLandlord, RoleAdmin}, RoleAdmin},
		{"system beats admin", []Role{RoleAdmin, RoleSystem}, RoleSystem},
		{"manager beats agent", []Role{RoleAgent, RoleManager}, RoleManager},
		{"order independent", []Role{RoleAgent, RoleTenant, RoleLandlord}, RoleLandlord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Collapse(tc.grants)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCollapseEmpty(t *testing.T) {
	_, ok := Collapse(nil)
	assert.False(t, ok)
}

func TestRolePartitions(t *testing.T) {
	assert.True(t, RoleAdmin.IsOperator())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.True(t, RoleSystem.IsAdmin())
	assert.True(t, RoleLandlord.IsOperator())
	assert.False(t, RoleLandlord.IsAdmin())
	assert.False(t, RoleTenant.IsOperator())
	assert.False(t, RoleTenant.IsAdmin())
}
