package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDirectory implements UserDirectory for testing.
type mockDirectory struct {
	users    map[int64]*domain.User
	logins   []int64
	getErr   error
	loginErr error
}

func newMockDirectory(users ...*domain.User) *mockDirectory {
	m := &mockDirectory{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockDirectory) GetUser(_ context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, team.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (m *mockDirectory) RecordLogin(_ context.Context, id int64, at time.Time) error {
	if m.loginErr != nil {
		return m.loginErr
	}
	m.logins = append(m.logins, id)
	m.users[id].LastLoginAt = &at
	return nil
}

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	claims   map[string]*Claims
	issued   []int64
	parseErr error
}

func (m *mockAuthenticator) GenerateToken(_ context.Context, userID int64) (*Token, error) {
	m.issued = append(m.issued, userID)
	return &Token{AccessToken: "token", TokenType: "Bearer"}, nil
}

func (m *mockAuthenticator) ParseToken(_ context.Context, token string) (*Claims, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	c, ok := m.claims[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return c, nil
}

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(dir *mockDirectory, auth *mockAuthenticator) *Service {
	s := NewService(dir, auth)
	s.now = func() time.Time { return testNow }
	return s
}

func TestValidateToken_ReturnsCurrentRole(t *testing.T) {
	user := &domain.User{ID: 1, Role: domain.RoleInstaller, Active: true}
	dir := newMockDirectory(user)
	auth := &mockAuthenticator{claims: map[string]*Claims{
		"t1": {UserID: 1, IssuedAt: testNow.Add(-time.Minute)},
	}}
	svc := newTestService(dir, auth)

	id, role, err := svc.ValidateToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, domain.RoleInstaller, role)

	// Role changes apply without a new token.
	dir.users[1].Role = domain.RoleOwner
	_, role, err = svc.ValidateToken(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)
}

func TestValidateToken_RecordsLoginOncePerToken(t *testing.T) {
	dir := newMockDirectory(&domain.User{ID: 1, Role: domain.RoleForeman, Active: true})
	auth := &mockAuthenticator{claims: map[string]*Claims{
		"t1": {UserID: 1, IssuedAt: testNow.Add(-time.Minute)},
	}}
	svc := newTestService(dir, auth)

	for range 3 {
		_, _, err := svc.ValidateToken(context.Background(), "t1")
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{1}, dir.logins)
}

func TestValidateToken_LoginFailureDoesNotReject(t *testing.T) {
	dir := newMockDirectory(&domain.User{ID: 1, Role: domain.RoleForeman, Active: true})
	dir.loginErr = errors.New("db down")
	auth := &mockAuthenticator{claims: map[string]*Claims{"t1": {UserID: 1, IssuedAt: testNow}}}
	svc := newTestService(dir, auth)

	_, _, err := svc.ValidateToken(context.Background(), "t1")
	require.NoError(t, err)
}

func TestValidateToken_Errors(t *testing.T) {
	dir := newMockDirectory(
		&domain.User{ID: 1, Role: domain.RoleOwner, Active: true},
		&domain.User{ID: 2, Role: domain.RoleInstaller, Active: false},
	)
	auth := &mockAuthenticator{claims: map[string]*Claims{
		"inactive": {UserID: 2, IssuedAt: testNow},
		"deleted":  {UserID: 9, IssuedAt: testNow},
	}}
	svc := newTestService(dir, auth)

	_, _, err := svc.ValidateToken(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.ValidateToken(context.Background(), "deleted")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.ValidateToken(context.Background(), "inactive")
	require.ErrorIs(t, err, ErrUserInactive)

	dir.getErr = errors.New("db down")
	auth.claims["ok"] = &Claims{UserID: 1, IssuedAt: testNow}
	_, _, err = svc.ValidateToken(context.Background(), "ok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestIssueToken(t *testing.T) {
	dir := newMockDirectory(
		&domain.User{ID: 1, Role: domain.RoleOwner, Active: true},
		&domain.User{ID: 2, Role: domain.RoleInstaller, Active: false},
	)
	auth := &mockAuthenticator{}
	svc := newTestService(dir, auth)

	token, err := svc.IssueToken(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "token", token.AccessToken)
	assert.Equal(t, []int64{1}, auth.issued)

	_, err = svc.IssueToken(context.Background(), 2)
	require.ErrorIs(t, err, ErrUserInactive)

	_, err = svc.IssueToken(context.Background(), 3)
	require.ErrorIs(t, err, team.ErrUserNotFound)
	assert.Equal(t, []int64{1}, auth.issued)
}
