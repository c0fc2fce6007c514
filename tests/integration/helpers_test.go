//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/bissquit/fieldops/internal/domain"
	"github.com/bissquit/fieldops/internal/testutil"
	"github.com/stretchr/testify/require"
)

// asOwner returns a validating client authenticated as the bootstrap owner.
func asOwner(t *testing.T) *testutil.Client {
	t.Helper()
	return newTestClient(t).WithToken(ownerToken)
}

// createUser adds a user through the API as the owner.
func createUser(t *testing.T, role domain.Role, projectIDs ...int64) domain.User {
	t.Helper()

	if projectIDs == nil {
		projectIDs = []int64{}
	}
	resp, err := asOwner(t).POST("/api/v1/users", map[string]interface{}{
		"name":                 "Test " + string(role),
		"email":                testutil.RandomEmail(),
		"role":                 role,
		"assigned_project_ids": projectIDs,
	})
	require.NoError(t, err)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user: status=%d body=%s", resp.StatusCode, testutil.ReadBody(t, resp))
	}

	var result struct {
		Data domain.User `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// tokenFor issues a bearer token for the user.
func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := testApp.Identity().IssueToken(context.Background(), userID)
	require.NoError(t, err)
	return token.AccessToken
}

// clientAs returns a validating client authenticated as the user.
func clientAs(t *testing.T, user domain.User) *testutil.Client {
	t.Helper()
	return newTestClient(t).WithToken(tokenFor(t, user.ID))
}
