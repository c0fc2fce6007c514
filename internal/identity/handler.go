package identity

import (
	"net/http"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/httputil"
	"github.com/bissquit/fieldops/internal/team"
	"github.com/go-chi/chi/v5"
)

// RoleCatalog describes roles to the caller.
type RoleCatalog interface {
	RoleInfo(role domain.Role) (access.RoleDefinition, error)
	PermissionsOf(role domain.Role) []domain.Permission
	AccessType(role domain.Role) access.ProjectAccess
}

var errorMappings = []httputil.ErrorMapping{
	{Error: team.ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrUserInactive, Status: http.StatusForbidden},
	{Error: ErrInvalidToken, Status: http.StatusUnauthorized},
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service *Service
	roles   RoleCatalog
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service, roles RoleCatalog) *Handler {
	return &Handler{
		service: service,
		roles:   roles,
	}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Post("/auth/refresh", h.Refresh)
}

// MeResponse describes the authenticated user and what they may do.
type MeResponse struct {
	User          *domain.User           `json:"user"`
	Role          *access.RoleDefinition `json:"role,omitempty"`
	Permissions   []domain.Permission    `json:"permissions"`
	ProjectAccess access.ProjectAccess   `json:"project_access"`
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	resp := MeResponse{
		User:          user,
		Permissions:   h.roles.PermissionsOf(user.Role),
		ProjectAccess: h.roles.AccessType(user.Role),
	}
	if def, err := h.roles.RoleInfo(user.Role); err == nil {
		resp.Role = &def
	}

	httputil.Success(w, http.StatusOK, resp)
}

// Refresh handles POST /auth/refresh.
// Issues a new token for the authenticated user.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if userID == 0 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.service.IssueToken(r.Context(), userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, token)
}
