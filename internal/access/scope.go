package access

import (
	"github.com/bissquit/fieldops/internal/domain"
)

// ProjectAccess is the project visibility class of a role.
type ProjectAccess string

// Project visibility classes.
const (
	ProjectAccessAll      ProjectAccess = "all"
	ProjectAccessAssigned ProjectAccess = "assigned"
	ProjectAccessNone     ProjectAccess = "none"
)

func projectAccessOf(set map[domain.Permission]struct{}) ProjectAccess {
	if _, ok := set[domain.PermViewAllProjects]; ok {
		return ProjectAccessAll
	}
	if _, ok := set[domain.PermViewAssignedProjects]; ok {
		return ProjectAccessAssigned
	}
	return ProjectAccessNone
}

// AccessType returns the project visibility class of a role.
func (c *Catalog) AccessType(role domain.Role) ProjectAccess {
	e, ok := c.roles[role]
	if !ok {
		return ProjectAccessNone
	}
	return e.access
}

// CanAccessProject is the authoritative project visibility check.
// Nothing else in the system derives project visibility from role names.
func (c *Catalog) CanAccessProject(user *domain.User, projectID int64) bool {
	if user == nil {
		return false
	}
	switch c.AccessType(user.Role) {
	case ProjectAccessAll:
		return true
	case ProjectAccessAssigned:
		return user.IsAssignedToProject(projectID)
	default:
		return false
	}
}

// AccessibleProjectIDs filters project ids down to the ones the user can see,
// keeping input order.
func (c *Catalog) AccessibleProjectIDs(user *domain.User, projectIDs []int64) []int64 {
	out := make([]int64, 0, len(projectIDs))
	for _, id := range projectIDs {
		if c.CanAccessProject(user, id) {
			out = append(out, id)
		}
	}
	return out
}
