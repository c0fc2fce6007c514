// Package identity authenticates bearer tokens against the team directory.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/ctxlog"
	"github.com/bissquit/fieldops/internal/team"
)

// Token is an issued bearer token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims is the verified content of a token.
type Claims struct {
	UserID   int64
	IssuedAt time.Time
}

// Authenticator signs and verifies tokens.
type Authenticator interface {
	GenerateToken(ctx context.Context, userID int64) (*Token, error)
	ParseToken(ctx context.Context, token string) (*Claims, error)
}

// UserDirectory is the part of the team directory identity depends on.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
}

// Service resolves tokens to users.
type Service struct {
	users UserDirectory
	auth  Authenticator
	now   func() time.Time
}

// NewService creates a new identity service.
func NewService(users UserDirectory, auth Authenticator) *Service {
	return &Service{
		users: users,
		auth:  auth,
		now:   time.Now,
	}
}

// ValidateToken verifies the token and returns the user's id and current role.
// Tokens never carry the role, so a role change applies to the next request.
func (s *Service) ValidateToken(ctx context.Context, token string) (int64, domain.Role, error) {
	claims, err := s.auth.ParseToken(ctx, token)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, team.ErrUserNotFound) {
			return 0, "", ErrInvalidToken
		}
		return 0, "", fmt.Errorf("get user: %w", err)
	}

	if !user.Active {
		return 0, "", ErrUserInactive
	}

	// First use of a freshly issued token counts as a login.
	if user.LastLoginAt == nil || claims.IssuedAt.After(*user.LastLoginAt) {
		if err := s.users.RecordLogin(ctx, user.ID, s.now()); err != nil {
			ctxlog.FromContext(ctx).Warn("failed to record login",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return user.ID, user.Role, nil
}

// IssueToken issues a token for an active user.
func (s *Service) IssueToken(ctx context.Context, userID int64) (*Token, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	token, err := s.auth.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// CurrentUser returns the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}
