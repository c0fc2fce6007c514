package team

import (
	"context"

	"github.com/bissquit/fieldops/internal/domain"
)

// Repository defines the interface for user storage.
//
// Implementations assign ids on CreateUser, enforce case-insensitive email
// uniqueness (returning ErrDuplicateEmail) and return ErrUserNotFound for
// unknown ids. Returned users are copies owned by the caller.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}
