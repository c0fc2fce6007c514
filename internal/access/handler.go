package access

import (
	"encoding/json"
	"net/http"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/ctxlog"
	"github.com/bissquit/fieldops/internal/pkg/httputil"
	"github.com/bissquit/fieldops/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Check modes.
const (
	ModeAll = "all"
	ModeAny = "any"
)

// Handler exposes the catalog and capability checks over HTTP.
type Handler struct {
	catalog   *Catalog
	validator *validator.Validate
}

// NewHandler creates a new access handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{
		catalog:   catalog,
		validator: httputil.NewValidator(),
	}
}

// RegisterRoutes registers access routes. Callers must be authenticated.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/roles", h.ListRoles)
	r.Get("/permissions", h.ListPermissions)
	r.Post("/access/check", h.Check)
}

// RoleView is a role definition together with its capabilities.
type RoleView struct {
	RoleDefinition
	Permissions   []domain.Permission `json:"permissions"`
	ProjectAccess ProjectAccess       `json:"project_access"`
}

// PermissionGroup lists the permissions of one feature area.
type PermissionGroup struct {
	Area        domain.PermissionArea `json:"area"`
	Permissions []domain.Permission   `json:"permissions"`
}

// CheckRequest asks whether the caller holds the permissions.
type CheckRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=all any"`
}

// CheckResponse is the answer to a CheckRequest.
type CheckResponse struct {
	Role    domain.Role `json:"role"`
	Mode    string      `json:"mode"`
	Allowed bool        `json:"allowed"`
	Unknown []string    `json:"unknown,omitempty"`
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(w http.ResponseWriter, _ *http.Request) {
	defs := h.catalog.AllRoles()
	views := make([]RoleView, 0, len(defs))
	for _, def := range defs {
		views = append(views, RoleView{
			RoleDefinition: def,
			Permissions:    h.catalog.PermissionsOf(def.Role),
			ProjectAccess:  h.catalog.AccessType(def.Role),
		})
	}

	httputil.Success(w, http.StatusOK, views)
}

// ListPermissions handles GET /permissions.
func (h *Handler) ListPermissions(w http.ResponseWriter, _ *http.Request) {
	groups := make([]PermissionGroup, 0)
	index := make(map[domain.PermissionArea]int)

	for _, p := range h.catalog.Permissions() {
		i, ok := index[p.Area()]
		if !ok {
			i = len(groups)
			index[p.Area()] = i
			groups = append(groups, PermissionGroup{Area: p.Area()})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}

	httputil.Success(w, http.StatusOK, groups)
}

// Check handles POST /access/check.
// Unknown permission tags never grant anything.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeAll
	}

	perms := make([]domain.Permission, 0, len(req.Permissions))
	var unknown []string
	for _, tag := range req.Permissions {
		p, err := domain.ParsePermission(tag)
		if err != nil {
			unknown = append(unknown, tag)
			continue
		}
		perms = append(perms, p)
	}

	role := httputil.GetRole(r.Context())

	var allowed bool
	switch mode {
	case ModeAny:
		allowed = h.catalog.CanAny(role, perms...)
	default:
		allowed = len(unknown) == 0 && h.catalog.CanAll(role, perms...)
	}

	metrics.RecordAccessDecision("check", allowed)
	if len(unknown) > 0 {
		ctxlog.FromContext(r.Context()).Warn("access check with unknown permissions",
			"unknown", unknown,
		)
	}

	httputil.Success(w, http.StatusOK, CheckResponse{
		Role:    role,
		Mode:    mode,
		Allowed: allowed,
		Unknown: unknown,
	})
}
