package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"alertaUtec/internal/modules/realtime/application/usecase"
	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/modules/realtime/infrastructure"
)

const (
	registryTimeout = 5 * time.Second
	sendBuffer      = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewWebsocketHandler exposes /ws. Each socket gets a fresh connection id, is attached to
// the local hub and registered in the durable registry; closing it unregisters it.
func NewWebsocketHandler(hub *infrastructure.Hub, connUC *usecase.ConnectionUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		connectionID := uuid.NewString()
		client := infrastructure.NewClient(conn, connectionID, sendBuffer)
		// attach before registering so a broadcast racing the handshake finds the socket
		hub.Attach(client)

		ctx, cancel := context.WithTimeout(c.Request().Context(), registryTimeout)
		defer cancel()
		if _, err := connUC.Connect(ctx, connectionID); err != nil {
			slog.Error("ws handler register failed", slog.String("connectionId", connectionID), slog.String("ip", peerIP), slog.Any("error", err))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "registry unavailable"), time.Now().Add(time.Second))
			hub.Detach(client)
			return nil
		}

		client.AddCloseHook(func(cl *infrastructure.Client) {
			ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
			defer cancel()
			if err := connUC.Disconnect(ctx, cl.ID()); err != nil {
				slog.Warn("ws disconnect cleanup failed", slog.String("connectionId", cl.ID()), slog.Any("error", err))
			}
		})

		go client.WritePump()
		go client.ReadPump(hub)

		greeting, _ := json.Marshal(map[string]any{
			"kind":         domain.KindConnected,
			"connectionId": connectionID,
			"timestamp":    time.Now().UTC(),
		})
		if err := client.Enqueue(greeting); err != nil {
			slog.Warn("ws greeting not delivered", slog.String("connectionId", connectionID), slog.Any("error", err))
		}

		slog.Info("ws handler connected", slog.String("connectionId", connectionID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}
