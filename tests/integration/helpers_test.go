//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/pulsepage/pulsepage/internal/testutil"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the API response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var orgCounter atomic.Int64

// freshOrg returns a unique organization id so tests never share tenant data.
func freshOrg() string {
	return fmt.Sprintf("org-%d", orgCounter.Add(1))
}

func adminToken(t *testing.T, orgID string) string {
	t.Helper()

	token, err := testAuth.IssueToken(domain.Identity{
		UserID:         "admin-1",
		OrganizationID: orgID,
		Role:           domain.RoleAdmin,
	})
	require.NoError(t, err)
	return token
}

func memberToken(t *testing.T, orgID string) string {
	t.Helper()

	token, err := testAuth.IssueToken(domain.Identity{
		UserID:         "member-1",
		OrganizationID: orgID,
		Role:           domain.RoleMember,
	})
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()

	var env envelope
	testutil.DecodeJSON(t, resp, &env)
	return env
}

// createTestService creates a service via the API and returns it.
func createTestService(t *testing.T, client *testutil.Client, name string) domain.Service {
	t.Helper()

	resp, err := client.POST("/api/services", map[string]any{
		"name":        name,
		"description": "created by integration test",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.Equal(t, "success", env.Status)

	var svc domain.Service
	require.NoError(t, json.Unmarshal(env.Data, &svc))
	return svc
}

// createTestIncident creates an incident referencing the given service.
func createTestIncident(t *testing.T, client *testutil.Client, title, serviceID string) domain.Incident {
	t.Helper()

	resp, err := client.POST("/api/incidents", map[string]any{
		"title":       title,
		"description": "created by integration test",
		"service":     serviceID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.Equal(t, "success", env.Status)

	var inc domain.Incident
	require.NoError(t, json.Unmarshal(env.Data, &inc))
	return inc
}
