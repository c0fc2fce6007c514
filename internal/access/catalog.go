// Package access implements the role-based access control engine:
// the role catalog, capability evaluation and project scoping.
package access

import (
	"fmt"
	"maps"
	"slices"

	"github.com/bissquit/fieldops/internal/domain"
)

// RoleDefinition holds display metadata of a role. It has no behavioral effect.
type RoleDefinition struct {
	Role        domain.Role `json:"role"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Color       string      `json:"color"`
	Icon        string      `json:"icon"`
}

type roleEntry struct {
	def    RoleDefinition
	set    map[domain.Permission]struct{}
	list   []domain.Permission
	access ProjectAccess
}

// Catalog is the immutable role to permission mapping.
// It is built once at startup and never mutated afterwards, so every method
// is safe for concurrent use without locking.
type Catalog struct {
	roles map[domain.Role]*roleEntry
	order []domain.Role
}

// NewCatalog validates the policy against the permission catalog and builds
// a Catalog from it.
func NewCatalog(p Policy) (*Catalog, error) {
	if len(p.Roles) == 0 {
		return nil, ErrEmptyPolicy
	}

	c := &Catalog{
		roles: make(map[domain.Role]*roleEntry, len(p.Roles)),
		order: domain.AllRoles(),
	}

	for _, key := range slices.Sorted(maps.Keys(p.Roles)) {
		spec := p.Roles[key]

		role, err := domain.ParseRole(key)
		if err != nil {
			return nil, fmt.Errorf("policy: %w", err)
		}

		entry, err := buildEntry(role, spec)
		if err != nil {
			return nil, err
		}
		c.roles[role] = entry
	}

	for _, role := range c.order {
		if _, ok := c.roles[role]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRole, role)
		}
	}

	return c, nil
}

func buildEntry(role domain.Role, spec RoleSpec) (*roleEntry, error) {
	set := make(map[domain.Permission]struct{}, len(spec.Permissions))
	for _, tag := range spec.Permissions {
		perm, err := domain.ParsePermission(tag)
		if err != nil {
			return nil, fmt.Errorf("policy role %s: %w", role, err)
		}
		set[perm] = struct{}{}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPermissionSet, role)
	}

	_, all := set[domain.PermViewAllProjects]
	_, assigned := set[domain.PermViewAssignedProjects]
	if all && assigned {
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousProjectScope, role)
	}

	list := make([]domain.Permission, 0, len(set))
	for _, perm := range domain.AllPermissions() {
		if _, ok := set[perm]; ok {
			list = append(list, perm)
		}
	}

	label := spec.Label
	if label == "" {
		label = string(role)
	}

	return &roleEntry{
		def: RoleDefinition{
			Role:        role,
			Label:       label,
			Description: spec.Description,
			Color:       spec.Color,
			Icon:        spec.Icon,
		},
		set:    set,
		list:   list,
		access: projectAccessOf(set),
	}, nil
}

// MustDefaultCatalog builds the catalog from DefaultPolicy.
// It panics if the built-in policy is malformed.
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPolicy())
	if err != nil {
		panic(fmt.Sprintf("access: invalid default policy: %v", err))
	}
	return c
}

// RoleInfo returns the definition of a role.
func (c *Catalog) RoleInfo(role domain.Role) (RoleDefinition, error) {
	e, ok := c.roles[role]
	if !ok {
		return RoleDefinition{}, fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}
	return e.def, nil
}

// AllRoles returns role definitions in presentation order.
func (c *Catalog) AllRoles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(c.order))
	for _, role := range c.order {
		out = append(out, c.roles[role].def)
	}
	return out
}

// PermissionsOf returns the permissions held by a role in catalog order.
// An unknown role holds nothing.
func (c *Catalog) PermissionsOf(role domain.Role) []domain.Permission {
	e, ok := c.roles[role]
	if !ok {
		return []domain.Permission{}
	}
	return slices.Clone(e.list)
}

// Permissions returns the closed permission catalog.
func (c *Catalog) Permissions() []domain.Permission {
	return domain.AllPermissions()
}
