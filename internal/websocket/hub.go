package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/joshuakim/sharpline/internal/metrics"
	"github.com/joshuakim/sharpline/internal/store"
	"github.com/sirupsen/logrus"
)

// Message types
const (
	MessageTypeRefresh = "refresh"
	MessageTypeReport  = "report"
	MessageTypeError   = "error"
	MessageTypeStatus  = "status"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

// Message represents a WebSocket message sent to a client
type Message struct {
	Type      string        `json:"type"`
	Result    *store.Result `json:"result,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
	Status    string        `json:"status,omitempty"`
}

// Refresher runs one refresh cycle
type Refresher interface {
	Refresh(ctx context.Context) store.Result
}

// Hub tracks connected clients. Results are only ever sent to the client
// that asked for them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	refresher Refresher
	metrics   *metrics.Metrics
	logger    *logrus.Entry

	maxConnections int
}

// NewHub creates a new Hub
func NewHub(refresher Refresher, m *metrics.Metrics, maxConnections int, logger *logrus.Logger) *Hub {
	if maxConnections <= 0 {
		maxConnections = 1000
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		register:       make(chan *Client, 256),
		unregister:     make(chan *Client, 256),
		refresher:      refresher,
		metrics:        m,
		logger:         logger.WithField("component", "websocket"),
		maxConnections: maxConnections,
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxConnections {
		h.logger.WithField("max_connections", h.maxConnections).Warn("Connection rejected, at capacity")
		client.sendError("Server at capacity, please try again later")
		client.close()
		return
	}

	h.clients[client] = true
	h.metrics.RecordConnection()
	h.logger.WithField("total", len(h.clients)).Info("Client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
		h.metrics.RecordDisconnection()
		h.logger.WithField("total", len(h.clients)).Info("Client disconnected")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		client.close()
		h.metrics.RecordDisconnection()
	}
}

// ServeHTTP upgrades the request and starts the client's pumps
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.CanAccept() {
		http.Error(w, "Server at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Upgrade failed")
		return
	}

	client := NewClient(h, conn)
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// CanAccept returns whether the hub can accept new connections
func (h *Hub) CanAccept() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) < h.maxConnections
}

func encode(msg Message) []byte {
	data, _ := json.Marshal(msg)
	return data
}
