package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllRoles_Order(t *testing.T) {
	assert.Equal(t, []Role{
		RoleOwner,
		RoleProjectManager,
		RoleForeman,
		RoleInstaller,
		RoleOfficeAdmin,
		RoleSubcontractor,
	}, AllRoles())
}

func TestAllRoles_ReturnsCopy(t *testing.T) {
	roles := AllRoles()
	roles[0] = "mutated"

	assert.Equal(t, RoleOwner, AllRoles()[0])
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "owner", want: RoleOwner},
		{in: "pm", want: RoleProjectManager},
		{in: "foreman", want: RoleForeman},
		{in: " foreman ", wantErr: true},
		{in: "office_admin", want: RoleOfficeAdmin},
		{in: "project_manager", wantErr: true},
		{in: "Owner", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRole)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
