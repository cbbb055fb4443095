package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	"github.com/jobtrail/jobtrail-backend/internal/events"
)

// Hub bridges the event bus to the set of active WebSocket clients. It holds
// one bus subscription and fans each event out to every connected client; the
// live feed is public, so there are no per-user rooms.
type Hub struct {
	// clients is the set of active connections
	clients map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	bus *events.Bus

	// mu protects the clients map for the counters
	mu sync.RWMutex

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(bus *events.Bus, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		bus:        bus,
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine. It exits
// when ctx is cancelled or the bus shuts down, closing every client.
func (h *Hub) Run(ctx context.Context) {
	sub := h.bus.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event, open := <-sub.Events():
			if !open {
				h.closeAll()
				return
			}
			h.broadcastEvent(event)
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered", "total_connections", count)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if ok {
		client.CloseSend()
		h.logger.Info("client unregistered")
	}
}

// broadcastEvent encodes the event once and queues it on every client. A
// client whose buffer is full is dropped; it is too slow to keep a live feed.
func (h *Hub) broadcastEvent(event domain.Event) {
	payload, err := domain.EncodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("client send buffer full, unregistering")
			h.unregisterClient(client)
		}
	}
}

// closeAll disconnects every client, used on shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.CloseSend()
	}
	h.logger.Info("websocket hub shut down", "closed_clients", len(clients))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
