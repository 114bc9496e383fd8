package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pulsepage/pulsepage/internal/pkg/metrics"
)

// DefaultSendBuffer is the per-client outbound queue size used when the
// configured value is zero.
const DefaultSendBuffer = 64

// Hub is the process-wide registry of live websocket connections.
//
// Every connection is tagged with its organization at handshake time, and
// Broadcast only delivers to connections of the same organization. Events are
// delivered to each client in publish order; there is no cross-instance
// ordering (scaling out requires a shared broadcast backbone, which this hub
// deliberately does not provide).
type Hub struct {
	logger     *slog.Logger
	sendBuffer int

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a new connection hub.
func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		logger:     logger,
		sendBuffer: sendBuffer,
		clients:    make(map[*Client]struct{}),
	}
}

// Broadcast delivers the event to every connected client of the given
// organization. The call never blocks on client I/O: each client has a
// buffered outbound queue, and a client whose queue is full is disconnected
// rather than stalling the publisher.
//
// Broadcast is fire-and-forget. Failures are logged and counted, never
// surfaced to the caller; a persisted mutation stays successful even when
// nobody hears about it.
func (h *Hub) Broadcast(orgID string, event Event) {
	frame, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal realtime event", "event", event.Name, "error", err)
		return
	}

	var stalled []*Client

	h.mu.RLock()
	for c := range h.clients {
		if c.orgID != orgID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.logger.Warn("dropping slow realtime client",
			"client_id", c.id,
			"organization_id", c.orgID,
		)
		metrics.RealtimeDroppedClientsTotal.Inc()
		h.remove(c)
		c.close()
	}

	metrics.RealtimeBroadcastsTotal.WithLabelValues(event.Name).Inc()
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OrgClientCount returns the number of connected clients for one organization.
func (h *Hub) OrgClientCount(orgID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for c := range h.clients {
		if c.orgID == orgID {
			n++
		}
	}
	return n
}

// Shutdown disconnects all clients. New registrations are rejected afterwards.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	metrics.RealtimeConnectedClients.Set(0)

	for _, c := range clients {
		c.close()
	}
}

// register adds a client to the registry. Returns false when the hub is
// already shut down.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.RealtimeConnectedClients.Set(float64(len(h.clients)))
	return true
}

// remove drops a client from the registry without closing it.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.RealtimeConnectedClients.Set(float64(len(h.clients)))
	}
}
