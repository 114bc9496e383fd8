// Package client provides a Go client for the PulsePage API. It keeps a
// local mirror of the organization's services and incidents, combining
// periodic polling with websocket push updates.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultPollInterval = 30 * time.Second
	minReconnectDelay   = time.Second
	maxReconnectDelay   = 30 * time.Second
)

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. https://status.example.com.
	BaseURL string
	// Token is the bearer token identifying the member and organization.
	Token string
	// PollInterval controls how often the full snapshot is refreshed.
	// Defaults to 30 seconds.
	PollInterval time.Duration
	// HTTPClient is used for polling. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client maintains a live State for one organization.
type Client struct {
	baseURL      string
	token        string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
	state        *State
}

// New creates a client. Run must be called to start synchronization.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required")
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		pollInterval: cfg.PollInterval,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		state:        NewState(),
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// State returns the local mirror. It is safe for concurrent reads while the
// client runs.
func (c *Client) State() *State {
	return c.state
}

// Run polls an initial snapshot, then keeps the state updated through the
// websocket channel with periodic re-polls as a safety net. It blocks until
// the context is cancelled.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	go c.pollLoop(ctx)
	c.subscribeLoop(ctx)
	return ctx.Err()
}

// Refresh fetches a full snapshot of services and incidents and replaces the
// local state.
func (c *Client) Refresh(ctx context.Context) error {
	var services []Service
	if err := c.get(ctx, "/api/services", &services); err != nil {
		return fmt.Errorf("fetch services: %w", err)
	}

	var incidents []Incident
	if err := c.get(ctx, "/api/incidents", &incidents); err != nil {
		return fmt.Errorf("fetch incidents: %w", err)
	}

	c.state.ReplaceServices(services)
	c.state.ReplaceIncidents(incidents)
	return nil
}

func (c *Client) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("snapshot refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// subscribeLoop keeps a websocket connection open, reconnecting with
// exponential backoff. Each successful reconnect is followed by a snapshot
// refresh to cover events missed while disconnected.
func (c *Client) subscribeLoop(ctx context.Context) {
	delay := minReconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.subscribe(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Warn("websocket connection lost", "error", err, "retry_in", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}

		if err := c.Refresh(ctx); err != nil {
			c.logger.Warn("snapshot refresh after reconnect failed", "error", err)
			continue
		}
		delay = minReconnectDelay
	}
}

func (c *Client) subscribe(ctx context.Context) error {
	wsURL, err := c.websocketURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial websocket: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		if err := c.applyEvent(message); err != nil {
			c.logger.Warn("skipping malformed event", "error", err)
		}
	}
}

type eventFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type servicePayload struct {
	Action    string   `json:"action"`
	Service   *Service `json:"service"`
	ServiceID string   `json:"serviceId"`
}

type incidentPayload struct {
	Action     string    `json:"action"`
	Incident   *Incident `json:"incident"`
	IncidentID string    `json:"incidentId"`
}

func (c *Client) applyEvent(message []byte) error {
	var frame eventFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	switch frame.Event {
	case "service":
		var payload servicePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return fmt.Errorf("decode service payload: %w", err)
		}
		switch payload.Action {
		case "create", "update":
			if payload.Service == nil {
				return fmt.Errorf("service payload without service")
			}
			c.state.UpsertService(*payload.Service)
		case "delete":
			c.state.RemoveService(payload.ServiceID)
		default:
			return fmt.Errorf("unknown action %q", payload.Action)
		}
	case "incident":
		var payload incidentPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			return fmt.Errorf("decode incident payload: %w", err)
		}
		switch payload.Action {
		case "create", "update":
			if payload.Incident == nil {
				return fmt.Errorf("incident payload without incident")
			}
			c.state.UpsertIncident(*payload.Incident)
		case "delete":
			c.state.RemoveIncident(payload.IncidentID)
		default:
			return fmt.Errorf("unknown action %q", payload.Action)
		}
	default:
		return fmt.Errorf("unknown event %q", frame.Event)
	}
	return nil
}

func (c *Client) websocketURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws"
	return u.String(), nil
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, env.Message)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
