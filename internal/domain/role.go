package domain

import "fmt"

// Role is the unit of access granted to a user.
type Role string

// Roles in their fixed presentation order.
const (
	RoleOwner          Role = "owner"
	RoleProjectManager Role = "pm"
	RoleForeman        Role = "foreman"
	RoleInstaller      Role = "installer"
	RoleOfficeAdmin    Role = "office_admin"
	RoleSubcontractor  Role = "subcontractor"
)

var allRoles = []Role{
	RoleOwner,
	RoleProjectManager,
	RoleForeman,
	RoleInstaller,
	RoleOfficeAdmin,
	RoleSubcontractor,
}

// AllRoles returns every role in presentation order.
// The order is a display convention, not a capability ranking.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleProjectManager, RoleForeman,
		RoleInstaller, RoleOfficeAdmin, RoleSubcontractor:
		return true
	}
	return false
}

// ParseRole converts a role tag read from storage or a request into a Role.
// Tags match exactly, the same way Role.IsValid does.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
