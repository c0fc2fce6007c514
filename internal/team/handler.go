package team

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Authorizer answers capability and project visibility questions.
type Authorizer interface {
	httputil.PermissionChecker
	AccessType(role domain.Role) access.ProjectAccess
	CanAccessProject(user *domain.User, projectID int64) bool
	AccessibleProjectIDs(user *domain.User, projectIDs []int64) []int64
}

// baseRole is the only role a caller without assign_roles may give a new user.
const baseRole = domain.RoleInstaller

var errorMappings = []httputil.ErrorMapping{
	{Error: ErrUserNotFound, Status: http.StatusNotFound},
	{Error: ErrDuplicateEmail, Status: http.StatusConflict},
	{Error: ErrValidation, Status: http.StatusBadRequest},
	{Error: domain.ErrUnknownRole, Status: http.StatusBadRequest},
}

// Handler handles HTTP requests for the team module.
type Handler struct {
	service   *Service
	authz     Authorizer
	validator *validator.Validate
}

// NewHandler creates a new team handler.
func NewHandler(service *Service, authz Authorizer) *Handler {
	return &Handler{
		service:   service,
		authz:     authz,
		validator: httputil.NewValidator(),
	}
}

// RegisterRoutes registers team routes. Callers must be authenticated.
func (h *Handler) RegisterRoutes(r chi.Router) {
	canView := httputil.RequirePermission(h.authz, domain.PermViewTeam)
	canManage := httputil.RequirePermission(h.authz, domain.PermManageTeam)

	r.Route("/users", func(r chi.Router) {
		r.With(canView).Get("/", h.ListUsers)
		r.With(canManage).Post("/", h.AddUser)
		r.Get("/{id}", h.GetUser)
		r.With(canManage).Patch("/{id}", h.UpdateUser)
		r.With(canManage).Post("/{id}/deactivate", h.DeactivateUser)
		r.With(canManage).Post("/{id}/activate", h.ActivateUser)
		r.Post("/{id}/projects/accessible", h.AccessibleProjects)
		r.Get("/{id}/projects/{projectID}/access", h.ProjectAccess)
	})
}

// AddUserRequest represents the request body for adding a user.
type AddUserRequest struct {
	Name               string   `json:"name" validate:"required,max=255"`
	Email              string   `json:"email" validate:"required,email,max=255"`
	Phone              *string  `json:"phone" validate:"omitempty,max=50"`
	Role               string   `json:"role" validate:"required"`
	AssignedProjectIDs []int64  `json:"assigned_project_ids"`
	AssignedCrewIDs    []string `json:"assigned_crew_ids"`
}

// UpdateUserRequest represents the request body for updating a user.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name               *string   `json:"name" validate:"omitempty,min=1,max=255"`
	Email              *string   `json:"email" validate:"omitempty,email,max=255"`
	Phone              *string   `json:"phone" validate:"omitempty,max=50"`
	Role               *string   `json:"role"`
	AssignedProjectIDs *[]int64  `json:"assigned_project_ids"`
	AssignedCrewIDs    *[]string `json:"assigned_crew_ids"`
	Active             *bool     `json:"active"`
}

// ProjectIDsRequest represents a list of project ids to filter.
type ProjectIDsRequest struct {
	ProjectIDs []int64 `json:"project_ids" validate:"required"`
}

// AccessibleProjectsResponse is the result of filtering project ids for a user.
type AccessibleProjectsResponse struct {
	UserID        int64                `json:"user_id"`
	ProjectAccess access.ProjectAccess `json:"project_access"`
	ProjectIDs    []int64              `json:"project_ids"`
}

// ProjectAccessResponse is the result of a single project visibility check.
type ProjectAccessResponse struct {
	UserID    int64 `json:"user_id"`
	ProjectID int64 `json:"project_id"`
	Allowed   bool  `json:"allowed"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, users)
}

// AddUser handles POST /users.
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	if role != baseRole && !h.authz.CanAll(httputil.GetRole(r.Context()), domain.PermAssignRoles) {
		httputil.Error(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	user, err := h.service.AddUser(r.Context(), AddUserInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Role:               role,
		AssignedProjectIDs: req.AssignedProjectIDs,
		AssignedCrewIDs:    req.AssignedCrewIDs,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if !h.canViewUser(r, id) {
		httputil.Error(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// UpdateUser handles PATCH /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if req.Active != nil && !*req.Active && id == httputil.GetUserID(r.Context()) {
		httputil.Error(w, http.StatusBadRequest, "cannot deactivate yourself")
		return
	}

	input := UpdateUserInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		AssignedProjectIDs: req.AssignedProjectIDs,
		AssignedCrewIDs:    req.AssignedCrewIDs,
		Active:             req.Active,
	}

	if req.Role != nil {
		if !h.authz.CanAll(httputil.GetRole(r.Context()), domain.PermAssignRoles) {
			httputil.Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			httputil.HandleError(r.Context(), w, err, errorMappings)
			return
		}
		input.Role = &role
	}

	user, err := h.service.UpdateUser(r.Context(), id, input)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// DeactivateUser handles POST /users/{id}/deactivate.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if id == httputil.GetUserID(r.Context()) {
		httputil.Error(w, http.StatusBadRequest, "cannot deactivate yourself")
		return
	}

	user, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// ActivateUser handles POST /users/{id}/activate.
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.service.Activate(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// AccessibleProjects handles POST /users/{id}/projects/accessible.
func (h *Handler) AccessibleProjects(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if !h.canViewUser(r, id) {
		httputil.Error(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	var req ProjectIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, AccessibleProjectsResponse{
		UserID:        user.ID,
		ProjectAccess: h.authz.AccessType(user.Role),
		ProjectIDs:    h.authz.AccessibleProjectIDs(user, req.ProjectIDs),
	})
}

// ProjectAccess handles GET /users/{id}/projects/{projectID}/access.
func (h *Handler) ProjectAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	projectID, ok := parseID(w, r, "projectID")
	if !ok {
		return
	}

	if !h.canViewUser(r, id) {
		httputil.Error(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, ProjectAccessResponse{
		UserID:    user.ID,
		ProjectID: projectID,
		Allowed:   h.authz.CanAccessProject(user, projectID),
	})
}

// canViewUser allows callers to see themselves, and team viewers to see anyone.
func (h *Handler) canViewUser(r *http.Request, id int64) bool {
	if httputil.GetUserID(r.Context()) == id {
		return true
	}
	return h.authz.CanAll(httputil.GetRole(r.Context()), domain.PermViewTeam)
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
