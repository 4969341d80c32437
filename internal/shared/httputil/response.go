package httputil

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// OK writes body merged with ok=true.
func OK(c echo.Context, status int, body map[string]any) error {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	out["ok"] = true
	return c.JSON(status, out)
}

// Fail maps err and writes the error envelope. Internal failures are logged with
// their cause; the client only sees the mapped message.
func Fail(c echo.Context, mapper *ErrorMapper, err error) error {
	info := mapper.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", info.Status),
			slog.Any("error", err),
		)
	} else {
		slog.Info("request rejected",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", info.Status),
			slog.String("kind", string(info.Kind)),
			slog.String("message", info.Message),
		)
	}
	return c.JSON(info.Status, ErrorEnvelope{OK: false, Message: info.Message, Kind: string(info.Kind)})
}
