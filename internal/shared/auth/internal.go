package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// InternalTokenHeader carries the shared secret gateways present to each other.
const InternalTokenHeader = "X-Internal-Token"

// RequireInternalToken guards node-to-node routes with a shared secret. With no secret
// configured every request is refused, so the routes are never open by accident.
func RequireInternalToken(token string) echo.MiddlewareFunc {
	want := []byte(strings.TrimSpace(token))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(want) == 0 {
				return c.JSON(http.StatusForbidden, map[string]any{"ok": false, "message": "internal API disabled", "kind": "forbidden"})
			}
			got := []byte(strings.TrimSpace(c.Request().Header.Get(InternalTokenHeader)))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				slog.Warn("internal auth rejected", slog.String("path", c.Path()), slog.String("ip", c.RealIP()))
				return c.JSON(http.StatusUnauthorized, map[string]any{"ok": false, "message": "invalid internal token", "kind": "unauthorized"})
			}
			return next(c)
		}
	}
}
