package access

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCatalog_EmptyPathUsesDefault(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	def := MustDefaultCatalog()
	for _, role := range domain.AllRoles() {
		assert.Equal(t, def.PermissionsOf(role), c.PermissionsOf(role))
	}
}

func TestLoadCatalog_ShippedPolicyMatchesDefault(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "configs", "policy.yaml"))
	require.NoError(t, err)

	def := MustDefaultCatalog()
	for _, role := range domain.AllRoles() {
		assert.ElementsMatch(t, def.PermissionsOf(role), c.PermissionsOf(role), "role %s", role)

		want, err := def.RoleInfo(role)
		require.NoError(t, err)
		got, err := c.RoleInfo(role)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLoadCatalog_RoundTrip(t *testing.T) {
	roles := make(map[string]interface{})
	for key, spec := range DefaultPolicy().Roles {
		roles[key] = map[string]interface{}{
			"label":       spec.Label,
			"description": spec.Description,
			"color":       spec.Color,
			"icon":        spec.Icon,
			"permissions": spec.Permissions,
		}
	}
	data, err := yaml.Parser().Marshal(map[string]interface{}{"roles": roles})
	require.NoError(t, err)

	c, err := LoadCatalog(writePolicy(t, string(data)))
	require.NoError(t, err)

	def := MustDefaultCatalog()
	assert.Equal(t, def.AllRoles(), c.AllRoles())
	for _, role := range domain.AllRoles() {
		assert.Equal(t, def.PermissionsOf(role), c.PermissionsOf(role))
		assert.Equal(t, def.AccessType(role), c.AccessType(role))
	}
}

func TestLoadCatalog_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "no roles",
			content: "roles: {}\n",
			wantErr: ErrEmptyPolicy,
		},
		{
			name: "undeclared permission",
			content: `
roles:
  owner: {permissions: [view_all_projects, fly_drones]}
`,
			wantErr: domain.ErrUnknownPermission,
		},
		{
			name: "roles missing",
			content: `
roles:
  owner: {permissions: [view_all_projects]}
  pm: {permissions: [view_all_projects]}
`,
			wantErr: ErrMissingRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCatalog(writePolicy(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, c)
		})
	}
}

func TestLoadCatalog_FileErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadCatalog(writePolicy(t, "roles: [owner\n"))
	require.Error(t, err)
}
