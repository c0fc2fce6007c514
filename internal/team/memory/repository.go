// Package memory provides an in-memory implementation of the team repository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/team"
)

// Repository implements team.Repository in process memory.
type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	order   []int64
	byEmail map[string]int64
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		nextID:  1,
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

// CreateUser stores a new user and assigns its id.
func (r *Repository) CreateUser(_ context.Context, user *domain.User) error {
	key := team.EmailKey(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[key]; ok {
		return team.ErrDuplicateEmail
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	user.ID = r.nextID
	r.nextID++

	r.users[user.ID] = user.Clone()
	r.order = append(r.order, user.ID)
	r.byEmail[key] = user.ID
	return nil
}

// GetUserByID returns a copy of the user with the given id.
func (r *Repository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, team.ErrUserNotFound
	}
	return u.Clone(), nil
}

// GetUserByEmail returns a copy of the user with a case-insensitively matching email.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	key := team.EmailKey(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[key]
	if !ok {
		return nil, team.ErrUserNotFound
	}
	return r.users[id].Clone(), nil
}

// ListUsers returns copies of all users in insertion order.
func (r *Repository) ListUsers(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, *r.users[id].Clone())
	}
	return users, nil
}

// UpdateUser replaces the stored user.
func (r *Repository) UpdateUser(_ context.Context, user *domain.User) error {
	newKey := team.EmailKey(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return team.ErrUserNotFound
	}

	if owner, ok := r.byEmail[newKey]; ok && owner != user.ID {
		return team.ErrDuplicateEmail
	}

	oldKey := team.EmailKey(existing.Email)
	if oldKey != newKey {
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}

	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now().UTC()
	}
	user.CreatedAt = existing.CreatedAt

	r.users[user.ID] = user.Clone()
	return nil
}
