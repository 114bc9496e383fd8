//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/ws"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame wsFrame
	require.NoError(t, json.Unmarshal(message, &frame))
	return frame
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(500*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func waitForOrgClients(t *testing.T, orgID string, n int) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for testApp.Hub().OrgClientCount(orgID) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients for %s, have %d", n, orgID, testApp.Hub().OrgClientCount(orgID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRealtimeServiceEvents(t *testing.T) {
	org := freshOrg()
	client := newTestClient(t).As(adminToken(t, org))

	conn := dialWS(t, memberToken(t, org))
	waitForOrgClients(t, org, 1)

	svc := createTestService(t, client, "Streamed")

	frame := readFrame(t, conn)
	assert.Equal(t, "service", frame.Event)

	var payload struct {
		Action  string `json:"action"`
		Service struct {
			ID             string `json:"id"`
			OrganizationID string `json:"organizationId"`
		} `json:"service"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, "create", payload.Action)
	assert.Equal(t, svc.ID, payload.Service.ID)
	assert.Equal(t, org, payload.Service.OrganizationID)
}

func TestRealtimeEventsAreOrgScoped(t *testing.T) {
	orgA := freshOrg()
	orgB := freshOrg()

	connA := dialWS(t, memberToken(t, orgA))
	connB := dialWS(t, memberToken(t, orgB))
	waitForOrgClients(t, orgA, 1)
	waitForOrgClients(t, orgB, 1)

	createTestService(t, newTestClient(t).As(adminToken(t, orgA)), "Only A")

	frame := readFrame(t, connA)
	assert.Equal(t, "service", frame.Event)

	expectSilence(t, connB)
}

func TestRealtimeCascadeDeleteEvents(t *testing.T) {
	org := freshOrg()
	client := newTestClient(t).As(adminToken(t, org))

	svc := createTestService(t, client, "Doomed")
	inc := createTestIncident(t, client, "Doomed incident", svc.ID)

	conn := dialWS(t, memberToken(t, org))
	waitForOrgClients(t, org, 1)

	resp, err := client.DELETE("/api/services/" + svc.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Incident deletes arrive before the service delete.
	first := readFrame(t, conn)
	assert.Equal(t, "incident", first.Event)

	var incPayload struct {
		Action     string `json:"action"`
		IncidentID string `json:"incidentId"`
	}
	require.NoError(t, json.Unmarshal(first.Data, &incPayload))
	assert.Equal(t, "delete", incPayload.Action)
	assert.Equal(t, inc.ID, incPayload.IncidentID)

	second := readFrame(t, conn)
	assert.Equal(t, "service", second.Event)

	var svcPayload struct {
		Action    string `json:"action"`
		ServiceID string `json:"serviceId"`
	}
	require.NoError(t, json.Unmarshal(second.Data, &svcPayload))
	assert.Equal(t, "delete", svcPayload.Action)
	assert.Equal(t, svc.ID, svcPayload.ServiceID)
}

func TestRealtimeHandshakeAuth(t *testing.T) {
	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/api/ws"

	t.Run("missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token via query parameter", func(t *testing.T) {
		org := freshOrg()
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+memberToken(t, org), nil)
		require.NoError(t, err)
		if resp != nil {
			defer resp.Body.Close()
		}
		defer conn.Close()
		waitForOrgClients(t, org, 1)
	})
}
