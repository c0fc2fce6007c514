package access

import (
	"github.com/bissquit/fieldops/internal/domain"
)

// Can reports whether the role holds the permission.
func (c *Catalog) Can(role domain.Role, perm domain.Permission) bool {
	e, ok := c.roles[role]
	if !ok {
		return false
	}
	_, ok = e.set[perm]
	return ok
}

// CanAll reports whether the role holds every permission.
// An empty list is vacuously allowed.
func (c *Catalog) CanAll(role domain.Role, perms ...domain.Permission) bool {
	for _, p := range perms {
		if !c.Can(role, p) {
			return false
		}
	}
	return true
}

// CanAny reports whether the role holds at least one of the permissions.
// An empty list is never allowed.
func (c *Catalog) CanAny(role domain.Role, perms ...domain.Permission) bool {
	for _, p := range perms {
		if c.Can(role, p) {
			return true
		}
	}
	return false
}

// Allowed evaluates raw tags coming from storage or the network.
// Tags outside the closed enumerations are denied.
func (c *Catalog) Allowed(roleTag, permTag string) bool {
	role, err := domain.ParseRole(roleTag)
	if err != nil {
		return false
	}
	perm, err := domain.ParsePermission(permTag)
	if err != nil {
		return false
	}
	return c.Can(role, perm)
}
