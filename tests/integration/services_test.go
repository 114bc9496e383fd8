//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pulsepage/pulsepage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceLifecycle(t *testing.T) {
	org := freshOrg()
	client := newTestClient(t).As(adminToken(t, org))

	svc := createTestService(t, client, "API")
	assert.Equal(t, org, svc.OrganizationID)
	assert.Equal(t, domain.ServiceStatusOperational, svc.Status)
	assert.NotEmpty(t, svc.ID)
	assert.False(t, svc.CreatedAt.IsZero())

	t.Run("get", func(t *testing.T) {
		resp, err := client.GET("/api/services/" + svc.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		assert.Equal(t, "Service retrieved successfully", env.Message)
	})

	t.Run("update status", func(t *testing.T) {
		resp, err := client.PUT("/api/services/"+svc.ID, map[string]any{
			"status": "Degraded Performance",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)

		var updated domain.Service
		require.NoError(t, json.Unmarshal(env.Data, &updated))
		assert.Equal(t, domain.ServiceStatusDegraded, updated.Status)
		assert.Equal(t, "API", updated.Name)
		assert.True(t, updated.UpdatedAt.After(svc.UpdatedAt) || updated.UpdatedAt.Equal(svc.UpdatedAt))
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := client.DELETE("/api/services/" + svc.ID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		assert.Equal(t, "Service deleted successfully", env.Message)

		resp, err = client.GET("/api/services/" + svc.ID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		env = decodeEnvelope(t, resp)
		assert.Equal(t, "Service not found", env.Message)
	})
}

func TestServiceValidation(t *testing.T) {
	org := freshOrg()
	client := newTestClientWithoutValidation().As(adminToken(t, org))

	t.Run("missing name", func(t *testing.T) {
		resp, err := client.POST("/api/services", map[string]any{"description": "no name"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		assert.Equal(t, "error", env.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		resp, err := client.POST("/api/services", map[string]any{
			"name":   "Weird",
			"status": "Sideways",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate name in same organization", func(t *testing.T) {
		createTestService(t, newTestClient(t).As(adminToken(t, org)), "Billing")

		resp, err := client.POST("/api/services", map[string]any{"name": "Billing"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("same name in another organization", func(t *testing.T) {
		other := newTestClient(t).As(adminToken(t, freshOrg()))
		createTestService(t, other, "Billing")
	})
}

func TestServiceAuthorization(t *testing.T) {
	org := freshOrg()
	admin := newTestClient(t).As(adminToken(t, org))
	member := newTestClientWithoutValidation().As(memberToken(t, org))

	svc := createTestService(t, admin, "API")

	t.Run("member can read", func(t *testing.T) {
		resp, err := member.GET("/api/services/" + svc.ID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("member cannot write", func(t *testing.T) {
		resp, err := member.POST("/api/services", map[string]any{"name": "Nope"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		resp, err := newTestClientWithoutValidation().GET("/api/services")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("token without organization", func(t *testing.T) {
		resp, err := newTestClientWithoutValidation().As(memberToken(t, "")).GET("/api/services")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		env := decodeEnvelope(t, resp)
		assert.Equal(t, "Organization not found", env.Message)
	})
}
