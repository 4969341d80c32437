package infrastructure

import (
	"fmt"
	"log/slog"
	"sync"

	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/platform/metrics"
)

// Hub tracks the sockets owned by this process, keyed by connection id. It is the
// transport side of the registry: the durable registry lives elsewhere and the hub
// only answers "can this node push to that id right now".
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	metrics *metrics.Realtime
}

func NewHub(m *metrics.Realtime) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		metrics: m,
	}
}

// Attach registers c, closing any previous socket that used the same id.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	previous := h.clients[c.ID()]
	h.clients[c.ID()] = c
	count := len(h.clients)
	h.mu.Unlock()

	if previous != nil && previous != c {
		previous.Close()
	}
	h.observe(count)
	slog.Info("ws client attached", slog.String("connectionId", c.ID()), slog.Int("local", count))
}

// Detach forgets c if it is still the socket registered for its id and closes it.
func (h *Hub) Detach(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	removed := false
	if current, ok := h.clients[c.ID()]; ok && current == c {
		delete(h.clients, c.ID())
		removed = true
	}
	count := len(h.clients)
	h.mu.Unlock()

	c.Close()
	if removed {
		h.observe(count)
		slog.Info("ws client detached", slog.String("connectionId", c.ID()), slog.Int("local", count))
	}
}

// Push queues data for the socket. Unknown or closed ids yield domain.ErrGone; a full
// send buffer yields domain.ErrTransient and leaves the socket attached.
func (h *Hub) Push(connectionID string, data []byte) error {
	h.mu.RLock()
	c := h.clients[connectionID]
	h.mu.RUnlock()
	if c == nil {
		return fmt.Errorf("push %s: %w", connectionID, domain.ErrGone)
	}
	return c.Enqueue(data)
}

// Disconnect closes the socket for connectionID, the management API's DELETE.
func (h *Hub) Disconnect(connectionID string) error {
	h.mu.RLock()
	c := h.clients[connectionID]
	h.mu.RUnlock()
	if c == nil {
		return fmt.Errorf("disconnect %s: %w", connectionID, domain.ErrGone)
	}
	h.Detach(c)
	return nil
}

// Count returns the number of locally attached sockets.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll detaches every socket, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.Detach(c)
	}
}

func (h *Hub) observe(count int) {
	if h.metrics != nil {
		h.metrics.ActiveConnections.Set(float64(count))
	}
}
