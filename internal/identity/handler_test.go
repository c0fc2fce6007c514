package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/fieldops/internal/access"
	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/pkg/httputil"
	"github.com/bissquit/fieldops/internal/team"
	"github.com/bissquit/fieldops/internal/team/memory"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerRouter(t *testing.T) (*chi.Mux, *team.Service) {
	t.Helper()
	users := team.NewService(memory.NewRepository())
	svc := NewService(users, &mockAuthenticator{})

	r := chi.NewRouter()
	NewHandler(svc, access.MustDefaultCatalog()).RegisterProtectedRoutes(r)
	return r, users
}

func serveAs(r http.Handler, userID int64, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), httputil.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Me(t *testing.T) {
	r, users := newHandlerRouter(t)
	u, err := users.AddUser(context.Background(), team.AddUserInput{
		Name:               "Fred",
		Email:              "fred@x.com",
		Role:               domain.RoleForeman,
		AssignedProjectIDs: []int64{1, 2},
	})
	require.NoError(t, err)

	rec := serveAs(r, u.ID, http.MethodGet, "/me")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data MeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, u.ID, resp.Data.User.ID)
	require.NotNil(t, resp.Data.Role)
	assert.Equal(t, "Foreman", resp.Data.Role.Label)
	assert.Equal(t, access.ProjectAccessAssigned, resp.Data.ProjectAccess)
	assert.Contains(t, resp.Data.Permissions, domain.PermVerifyPunchItems)
	assert.NotContains(t, resp.Data.Permissions, domain.PermViewPricing)
}

func TestHandler_Me_Errors(t *testing.T) {
	r, _ := newHandlerRouter(t)

	rec := serveAs(r, 0, http.MethodGet, "/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveAs(r, 404, http.MethodGet, "/me")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Refresh(t *testing.T) {
	r, users := newHandlerRouter(t)
	ctx := context.Background()
	u, err := users.AddUser(ctx, team.AddUserInput{Name: "Ivan", Email: "ivan@x.com", Role: domain.RoleInstaller})
	require.NoError(t, err)

	rec := serveAs(r, u.ID, http.MethodPost, "/auth/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = users.Deactivate(ctx, u.ID)
	require.NoError(t, err)

	rec = serveAs(r, u.ID, http.MethodPost, "/auth/refresh")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
