package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pulsepage/pulsepage/internal/pkg/ctxlog"
	"github.com/pulsepage/pulsepage/internal/pkg/httputil"
)

// Handler upgrades HTTP requests to websocket connections and registers them
// on the hub. The handshake authenticates with the same token validator as
// the HTTP API; the connection is tagged with the caller's organization so
// broadcasts never cross tenant boundaries.
type Handler struct {
	hub       *Hub
	validator httputil.TokenValidator
	upgrader  websocket.Upgrader
}

// NewHandler creates a websocket handler.
func NewHandler(hub *Hub, validator httputil.TokenValidator, allowedOrigins []string) *Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return &Handler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Non-browser clients.
					return true
				}
				return originsSet[origin] || originsSet["*"]
			},
		},
	}
}

// Serve handles GET /api/ws. No state is transferred on connect; clients are
// expected to fetch a snapshot over the HTTP API separately.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())

	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	ident, err := h.validator.ValidateToken(r.Context(), token)
	if err != nil {
		httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	if ident.OrganizationID == "" {
		httputil.Error(w, http.StatusNotFound, "Organization not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn, ident.OrganizationID)
	if !h.hub.register(client) {
		_ = conn.Close()
		return
	}

	logger.Info("realtime client connected",
		"client_id", client.id,
		"organization_id", client.orgID,
	)

	go client.writePump()
	go client.readPump()
}
