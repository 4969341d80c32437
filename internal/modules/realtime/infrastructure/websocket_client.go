package infrastructure

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"alertaUtec/internal/modules/realtime/domain"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1 << 16
)

// command is the only inbound frame clients send: {"action":"ping"}.
type command struct {
	Action string `json:"action"`
}

type Client struct {
	id         string
	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	closeHooks []func(*Client)
	hookMu     sync.Mutex
}

// NewClient wraps conn with a buffered outbound queue of size buf.
func NewClient(conn *websocket.Conn, connectionID string, buf int) *Client {
	if buf <= 0 {
		buf = 1
	}
	return &Client{
		id:   connectionID,
		conn: conn,
		send: make(chan []byte, buf),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Enqueue hands data to the write pump without blocking.
func (c *Client) Enqueue(data []byte) error {
	select {
	case <-c.done:
		return fmt.Errorf("push %s: %w", c.id, domain.ErrGone)
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("push %s: %w", c.id, domain.ErrGone)
	default:
		slog.Warn("websocket send buffer full", slog.String("connectionId", c.id))
		return fmt.Errorf("push %s: send buffer full: %w", c.id, domain.ErrTransient)
	}
}

// Close is idempotent; hooks run once, after the socket is closed.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = c.conn.Close()
		}
		c.invokeCloseHooks()
	})
}

// AddCloseHook registers a callback executed once when the client closes.
func (c *Client) AddCloseHook(fn func(*Client)) {
	if fn == nil {
		return
	}
	c.hookMu.Lock()
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

func (c *Client) invokeCloseHooks() {
	c.hookMu.Lock()
	hooks := append([]func(*Client){}, c.closeHooks...)
	c.closeHooks = nil
	c.hookMu.Unlock()

	for _, hook := range hooks {
		func(h func(*Client)) {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("ws close hook panic", slog.String("connectionId", c.id), slog.Any("error", r))
				}
			}()
			h(c)
		}(hook)
	}
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.String("connectionId", c.id), slog.Any("error", err))
				c.Close()
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				slog.Warn("websocket ping error", slog.String("connectionId", c.id), slog.Any("error", err))
				c.Close()
				return
			}
		}
	}
}

// ReadPump blocks until the peer goes away, then detaches the client from hub.
func (c *Client) ReadPump(hub *Hub) {
	defer hub.Detach(c)

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", slog.String("connectionId", c.id), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleFrame(data)
	}
}

func (c *Client) handleFrame(data []byte) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return
	}
	if strings.EqualFold(strings.TrimSpace(cmd.Action), "ping") {
		_ = c.Enqueue([]byte(`{"kind":"pong"}`))
	}
}
