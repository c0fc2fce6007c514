package team_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/team"
	"github.com/bissquit/fieldops/internal/team/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *team.Service {
	return team.NewService(memory.NewRepository())
}

func ptr[T any](v T) *T {
	return &v
}

func TestService_AddUser_Defaults(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	jane, err := svc.AddUser(ctx, team.AddUserInput{
		Name:  "Jane Doe",
		Email: "jane@x.com",
		Role:  domain.RoleInstaller,
	})
	require.NoError(t, err)
	assert.Positive(t, jane.ID)
	assert.False(t, jane.CreatedAt.IsZero())

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	got := users[0]
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, domain.RoleInstaller, got.Role)
	assert.True(t, got.Active)
	assert.Equal(t, []int64{}, got.AssignedProjectIDs)
	assert.Equal(t, []string{}, got.AssignedCrewIDs)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.LastLoginAt)
}

func TestService_AddUser_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	tests := []struct {
		name    string
		input   team.AddUserInput
		wantErr error
	}{
		{
			name:    "blank name",
			input:   team.AddUserInput{Name: "  ", Email: "a@x.com", Role: domain.RoleInstaller},
			wantErr: team.ErrValidation,
		},
		{
			name:    "blank email",
			input:   team.AddUserInput{Name: "A", Email: "", Role: domain.RoleInstaller},
			wantErr: team.ErrValidation,
		},
		{
			name:    "unknown role",
			input:   team.AddUserInput{Name: "A", Email: "a@x.com", Role: "project_manager"},
			wantErr: domain.ErrUnknownRole,
		},
		{
			name: "non-positive project id",
			input: team.AddUserInput{
				Name: "A", Email: "a@x.com", Role: domain.RoleForeman,
				AssignedProjectIDs: []int64{1, 0},
			},
			wantErr: team.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddUser(ctx, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestService_AddUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.AddUser(ctx, team.AddUserInput{Name: "Jane", Email: "jane@x.com", Role: domain.RoleInstaller})
	require.NoError(t, err)

	_, err = svc.AddUser(ctx, team.AddUserInput{Name: "Other Jane", Email: " JANE@X.com", Role: domain.RoleForeman})
	require.ErrorIs(t, err, team.ErrDuplicateEmail)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestService_AddUser_SharpSIsDistinctMailbox(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.AddUser(ctx, team.AddUserInput{Name: "Anna", Email: "straße@x.de", Role: domain.RoleInstaller})
	require.NoError(t, err)

	_, err = svc.AddUser(ctx, team.AddUserInput{Name: "Bert", Email: "strasse@x.de", Role: domain.RoleInstaller})
	require.NoError(t, err)

	_, err = svc.AddUser(ctx, team.AddUserInput{Name: "Carl", Email: "STRASSE@x.de", Role: domain.RoleInstaller})
	require.ErrorIs(t, err, team.ErrDuplicateEmail)
}

func TestService_AddUser_NormalizesAssignments(t *testing.T) {
	svc := newService()

	u, err := svc.AddUser(context.Background(), team.AddUserInput{
		Name:               "Bob",
		Email:              "bob@x.com",
		Phone:              ptr("  "),
		Role:               domain.RoleForeman,
		AssignedProjectIDs: []int64{3, 1, 3},
		AssignedCrewIDs:    []string{"crew-a", " ", "crew-a", "crew-b"},
		Active:             ptr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 1}, u.AssignedProjectIDs)
	assert.Equal(t, []string{"crew-a", "crew-b"}, u.AssignedCrewIDs)
	assert.Nil(t, u.Phone)
	assert.False(t, u.Active)
}

func TestService_AddUser_ConcurrentUniqueIDs(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)

	for i := range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.AddUser(ctx, team.AddUserInput{
				Name:  fmt.Sprintf("User %d", i),
				Email: fmt.Sprintf("user%d@x.com", i),
				Role:  domain.RoleInstaller,
			})
			errs <- err
		}()
		// Same address with different case races against the one above.
		go func() {
			defer wg.Done()
			_, err := svc.AddUser(ctx, team.AddUserInput{
				Name:  fmt.Sprintf("Dup %d", i),
				Email: fmt.Sprintf("USER%d@x.com", i),
				Role:  domain.RoleInstaller,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, team.ErrDuplicateEmail)
			failed++
		}
	}
	assert.Equal(t, workers, failed)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, workers)

	ids := make(map[int64]bool, len(users))
	for _, u := range users {
		assert.False(t, ids[u.ID], "id %d assigned twice", u.ID)
		ids[u.ID] = true
	}
}

func TestService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.AddUser(ctx, team.AddUserInput{Name: "Jane", Email: "jane@x.com", Role: domain.RoleInstaller})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, u.ID, team.UpdateUserInput{
		Phone:              ptr("+1 555 0100"),
		AssignedProjectIDs: ptr([]int64{7}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, domain.RoleInstaller, updated.Role)
	assert.Equal(t, "+1 555 0100", *updated.Phone)
	assert.Equal(t, []int64{7}, updated.AssignedProjectIDs)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestService_UpdateUser_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	jane, err := svc.AddUser(ctx, team.AddUserInput{Name: "Jane", Email: "jane@x.com", Role: domain.RoleInstaller})
	require.NoError(t, err)
	_, err = svc.AddUser(ctx, team.AddUserInput{Name: "Bob", Email: "bob@x.com", Role: domain.RoleForeman})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, 999, team.UpdateUserInput{Name: ptr("Ghost")})
	require.ErrorIs(t, err, team.ErrUserNotFound)

	_, err = svc.UpdateUser(ctx, jane.ID, team.UpdateUserInput{Email: ptr("BOB@x.com")})
	require.ErrorIs(t, err, team.ErrDuplicateEmail)

	_, err = svc.UpdateUser(ctx, jane.ID, team.UpdateUserInput{Name: ptr(" ")})
	require.ErrorIs(t, err, team.ErrValidation)

	_, err = svc.UpdateUser(ctx, jane.ID, team.UpdateUserInput{Role: ptr(domain.Role("project_manager"))})
	require.ErrorIs(t, err, domain.ErrUnknownRole)

	// Changing only the case of one's own email is not a conflict.
	updated, err := svc.UpdateUser(ctx, jane.ID, team.UpdateUserInput{Email: ptr("Jane@X.com")})
	require.NoError(t, err)
	assert.Equal(t, "Jane@X.com", updated.Email)
}

func TestService_RoleChangeAppliesImmediately(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	catalog := access.MustDefaultCatalog()

	u, err := svc.AddUser(ctx, team.AddUserInput{
		Name:               "Jane",
		Email:              "jane@x.com",
		Role:               domain.RoleInstaller,
		AssignedProjectIDs: []int64{1},
	})
	require.NoError(t, err)

	current, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, catalog.Can(current.Role, domain.PermViewFinancials))
	assert.False(t, catalog.CanAccessProject(current, 2))

	_, err = svc.UpdateUser(ctx, u.ID, team.UpdateUserInput{Role: ptr(domain.RoleOwner)})
	require.NoError(t, err)

	current, err = svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, catalog.Can(current.Role, domain.PermViewFinancials))
	assert.True(t, catalog.CanAccessProject(current, 2))
}

func TestService_DeactivateKeepsAssignments(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.AddUser(ctx, team.AddUserInput{
		Name:               "Jane",
		Email:              "jane@x.com",
		Role:               domain.RoleForeman,
		AssignedProjectIDs: []int64{1, 2},
		AssignedCrewIDs:    []string{"crew-a"},
	})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Equal(t, domain.RoleForeman, deactivated.Role)
	assert.Equal(t, []int64{1, 2}, deactivated.AssignedProjectIDs)
	assert.Equal(t, []string{"crew-a"}, deactivated.AssignedCrewIDs)

	again, err := svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	reactivated, err := svc.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)

	_, err = svc.Deactivate(ctx, 999)
	require.ErrorIs(t, err, team.ErrUserNotFound)
}

func TestService_ListUsers_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	for _, name := range []string{"Zed", "Amy", "Mo"} {
		_, err := svc.AddUser(ctx, team.AddUserInput{
			Name:  name,
			Email: name + "@x.com",
			Role:  domain.RoleSubcontractor,
		})
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Zed", users[0].Name)
	assert.Equal(t, "Amy", users[1].Name)
	assert.Equal(t, "Mo", users[2].Name)
	assert.Less(t, users[0].ID, users[1].ID)
	assert.Less(t, users[1].ID, users[2].ID)
}

func TestService_RecordLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.AddUser(ctx, team.AddUserInput{Name: "Jane", Email: "jane@x.com", Role: domain.RoleInstaller})
	require.NoError(t, err)

	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	require.NoError(t, svc.RecordLogin(ctx, u.ID, at))

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))
	assert.Equal(t, time.UTC, got.LastLoginAt.Location())

	require.ErrorIs(t, svc.RecordLogin(ctx, 999, at), team.ErrUserNotFound)
}

func TestService_EnsureOwner(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	owner, err := svc.EnsureOwner(ctx, "Boss", "boss@x.com")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, domain.RoleOwner, owner.Role)

	again, err := svc.EnsureOwner(ctx, "Boss", "boss@x.com")
	require.NoError(t, err)
	assert.Nil(t, again)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
