package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/modules/realtime/infrastructure"
	"alertaUtec/internal/shared/httputil"
)

const maxPushBody = 64 << 10

// RegisterConnectionRoutes mounts the node-to-node management API behind guard.
func RegisterConnectionRoutes(e *echo.Echo, hub *infrastructure.Hub, guard echo.MiddlewareFunc) {
	g := e.Group(strings.TrimSuffix(infrastructure.ConnectionsPath, "/"), guard)
	g.POST("/:id", NewPushConnectionHandler(hub))
	g.DELETE("/:id", NewDeleteConnectionHandler(hub))
}

// NewPushConnectionHandler serves POST /@connections/:id, the push primitive other nodes
// use to reach sockets held here. The body is written to the socket verbatim.
func NewPushConnectionHandler(hub *infrastructure.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPushBody))
		if err != nil {
			return c.JSON(http.StatusBadRequest, httputil.ErrorEnvelope{Message: "invalid request body", Kind: "bad_input"})
		}

		err = hub.Push(id, body)
		switch {
		case err == nil:
			return httputil.OK(c, http.StatusOK, nil)
		case errors.Is(err, domain.ErrGone):
			return c.JSON(http.StatusGone, httputil.ErrorEnvelope{Message: "connection gone", Kind: "not_found"})
		default:
			slog.Warn("push connection: not delivered", slog.String("connectionId", id), slog.Any("error", err))
			return c.JSON(http.StatusTooManyRequests, httputil.ErrorEnvelope{Message: "connection busy", Kind: "internal"})
		}
	}
}

// NewDeleteConnectionHandler serves DELETE /@connections/:id and closes the local socket.
func NewDeleteConnectionHandler(hub *infrastructure.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if err := hub.Disconnect(id); err != nil {
			return c.JSON(http.StatusGone, httputil.ErrorEnvelope{Message: "connection gone", Kind: "not_found"})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
