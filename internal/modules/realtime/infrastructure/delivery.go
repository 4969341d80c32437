package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alertaUtec/internal/modules/realtime/application/port"
	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/shared/auth"
)

// ConnectionsPath is the management route every gateway exposes for remote pushes.
const ConnectionsPath = "/@connections/"

// LocalChannel delivers through this process's hub.
type LocalChannel struct {
	hub *Hub
}

func NewLocalChannel(hub *Hub) *LocalChannel {
	return &LocalChannel{hub: hub}
}

func (l *LocalChannel) Send(_ context.Context, conn domain.Connection, payload []byte) error {
	return l.hub.Push(conn.ConnectionID, payload)
}

// HTTPChannel posts to the owning gateway's management API. 410 is the only
// response treated as gone; every other failure is transient.
// Requests carry the shared internal token the peer's management API checks.
type HTTPChannel struct {
	client *http.Client
	token  string
}

func NewHTTPChannel(timeout time.Duration, token string, client *http.Client) *HTTPChannel {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPChannel{client: client, token: token}
}

func (h *HTTPChannel) Send(ctx context.Context, conn domain.Connection, payload []byte) error {
	endpoint := strings.TrimRight(strings.TrimSpace(conn.Endpoint), "/")
	if endpoint == "" {
		return fmt.Errorf("post %s: no endpoint: %w", conn.ConnectionID, domain.ErrTransient)
	}
	target := endpoint + ConnectionsPath + url.PathEscape(conn.ConnectionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post %s: %v: %w", conn.ConnectionID, err, domain.ErrTransient)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set(auth.InternalTokenHeader, h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %v: %w", conn.ConnectionID, err, domain.ErrTransient)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode == http.StatusGone:
		return fmt.Errorf("post %s: %w", conn.ConnectionID, domain.ErrGone)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return fmt.Errorf("post %s: status %d: %w", conn.ConnectionID, resp.StatusCode, domain.ErrTransient)
	}
}

// RoutingChannel sends to local sockets directly and to everything else over HTTP.
// With a liveness source, sockets owned by a node whose heartbeat has expired are
// reported gone without a network round trip.
type RoutingChannel struct {
	nodeID   string
	local    port.DeliveryChannel
	remote   port.DeliveryChannel
	liveness port.NodeLiveness
}

func NewRoutingChannel(nodeID string, local, remote port.DeliveryChannel) *RoutingChannel {
	return &RoutingChannel{nodeID: nodeID, local: local, remote: remote}
}

// WithLiveness enables owner-liveness checks for remote sends.
func (r *RoutingChannel) WithLiveness(l port.NodeLiveness) *RoutingChannel {
	r.liveness = l
	return r
}

func (r *RoutingChannel) Send(ctx context.Context, conn domain.Connection, payload []byte) error {
	if r.remote == nil || conn.NodeID == "" || conn.NodeID == r.nodeID {
		return r.local.Send(ctx, conn, payload)
	}
	if r.liveness != nil {
		alive, err := r.liveness.Alive(ctx, conn.NodeID)
		if err != nil {
			return fmt.Errorf("liveness %s: %v: %w", conn.NodeID, err, domain.ErrTransient)
		}
		if !alive {
			return fmt.Errorf("node %s is down: %w", conn.NodeID, domain.ErrGone)
		}
	}
	return r.remote.Send(ctx, conn, payload)
}

var (
	_ port.DeliveryChannel = (*LocalChannel)(nil)
	_ port.DeliveryChannel = (*HTTPChannel)(nil)
	_ port.DeliveryChannel = (*RoutingChannel)(nil)
)
