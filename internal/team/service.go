// Package team manages the user directory: team members, their roles and
// their project and crew assignments.
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/ctxlog"
)

// Service owns all user records. Writes are serialized so that id assignment
// and duplicate email detection cannot race; reads go straight to the repository.
type Service struct {
	repo Repository
	mu   sync.Mutex
	now  func() time.Time
}

// NewService creates a new team service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// AddUserInput contains data for adding a team member.
type AddUserInput struct {
	Name               string
	Email              string
	Phone              *string
	Role               domain.Role
	AssignedProjectIDs []int64
	AssignedCrewIDs    []string
	Active             *bool
}

// UpdateUserInput contains fields to change. Nil fields are left untouched.
type UpdateUserInput struct {
	Name               *string
	Email              *string
	Phone              *string
	Role               *domain.Role
	AssignedProjectIDs *[]int64
	AssignedCrewIDs    *[]string
	Active             *bool
}

// AddUser creates a new team member.
func (s *Service) AddUser(ctx context.Context, input AddUserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Reason: "is required"}
	}
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, input.Role)
	}

	projectIDs, err := normalizeProjectIDs(input.AssignedProjectIDs)
	if err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:               name,
		Email:              email,
		Phone:              normalizePhone(input.Phone),
		Role:               input.Role,
		AssignedProjectIDs: projectIDs,
		AssignedCrewIDs:    normalizeCrewIDs(input.AssignedCrewIDs),
		Active:             active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("user added",
		"user_id", user.ID,
		"role", user.Role,
	)

	return user, nil
}

// UpdateUser merges the supplied fields into an existing user.
// A role change is visible to the very next authorization check.
func (s *Service) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousRole := user.Role

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be blank"}
		}
		user.Name = name
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, &ValidationError{Field: "email", Reason: "must not be blank"}
		}
		if EmailKey(email) != EmailKey(user.Email) {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
		}
		user.Email = email
	}

	if input.Phone != nil {
		user.Phone = normalizePhone(input.Phone)
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, *input.Role)
		}
		user.Role = *input.Role
	}

	if input.AssignedProjectIDs != nil {
		ids, err := normalizeProjectIDs(*input.AssignedProjectIDs)
		if err != nil {
			return nil, err
		}
		user.AssignedProjectIDs = ids
	}

	if input.AssignedCrewIDs != nil {
		user.AssignedCrewIDs = normalizeCrewIDs(*input.AssignedCrewIDs)
	}

	if input.Active != nil {
		user.Active = *input.Active
	}

	user.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	if previousRole != user.Role {
		logger.Info("user role changed",
			"user_id", user.ID,
			"from", previousRole,
			"to", user.Role,
		)
	} else {
		logger.Info("user updated", "user_id", user.ID)
	}

	return user, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all users in insertion order.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// Deactivate marks a user inactive. Role and assignments are kept so the
// user can be reactivated later.
func (s *Service) Deactivate(ctx context.Context, id int64) (*domain.User, error) {
	return s.setActive(ctx, id, false)
}

// Activate reverses Deactivate.
func (s *Service) Activate(ctx context.Context, id int64) (*domain.User, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Active == active {
		return user, nil
	}

	user.Active = active
	user.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("user activity changed",
		"user_id", user.ID,
		"active", active,
	)

	return user, nil
}

// RecordLogin stores the time of the user's latest login.
func (s *Service) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	at = at.UTC()
	user.LastLoginAt = &at
	return s.repo.UpdateUser(ctx, user)
}

// EnsureOwner creates an owner account when the directory is empty.
// It returns the created user, or nil if the directory already had users.
func (s *Service) EnsureOwner(ctx context.Context, name, email string) (*domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return nil, nil
	}

	user, err := s.AddUser(ctx, AddUserInput{
		Name:  name,
		Email: email,
		Role:  domain.RoleOwner,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, nil
		}
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return user, nil
}

// ensureEmailFree must be called with s.mu held.
func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("check email: %w", err)
	}
	if existing.ID != selfID {
		return ErrDuplicateEmail
	}
	return nil
}

func normalizeProjectIDs(ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, &ValidationError{Field: "assigned_project_ids", Reason: "must contain positive ids"}
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func normalizeCrewIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}
