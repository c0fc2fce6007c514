package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPermissions_Closed(t *testing.T) {
	perms := AllPermissions()
	assert.Len(t, perms, 50)

	seen := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		assert.False(t, seen[p], "duplicate permission %s", p)
		seen[p] = true
		assert.True(t, p.IsValid())
		assert.NotEmpty(t, p.Area(), "permission %s has no area", p)
	}
}

func TestPermission_Area(t *testing.T) {
	assert.Equal(t, AreaFinancial, PermViewPricing.Area())
	assert.Equal(t, AreaProjects, PermViewAssignedProjects.Area())
	assert.Equal(t, AreaTeam, PermAssignRoles.Area())
	assert.Empty(t, Permission("fly_drones").Area())
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("view_pricing")
	require.NoError(t, err)
	assert.Equal(t, PermViewPricing, p)

	_, err = ParsePermission(" view_pricing ")
	require.ErrorIs(t, err, ErrUnknownPermission)

	_, err = ParsePermission("view-pricing")
	require.ErrorIs(t, err, ErrUnknownPermission)

	_, err = ParsePermission("")
	require.ErrorIs(t, err, ErrUnknownPermission)
}
