package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const claimsContextKey = "auth.claims"

// RequireRoles rejects requests whose token is missing, invalid or lacks every allowed role.
// A nil validator disables the check, which is how local deployments run without a key.
func RequireRoles(validator TokenValidator, roles []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if validator == nil {
			return next
		}
		return func(c echo.Context) error {
			claims, err := validator.Validate(ExtractToken(c.Request(), "token"))
			if err != nil {
				slog.Warn("auth rejected", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
				return c.JSON(http.StatusUnauthorized, map[string]any{"ok": false, "message": "Token inválido o ausente", "kind": "unauthorized"})
			}
			if len(roles) > 0 && !claims.HasAnyRole(roles) {
				slog.Warn("auth forbidden", slog.String("path", c.Path()), slog.String("sub", claims.Subject), slog.Any("error", ErrForbidden))
				return c.JSON(http.StatusForbidden, map[string]any{"ok": false, "message": "Permisos insuficientes", "kind": "forbidden"})
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by RequireRoles, if any.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
