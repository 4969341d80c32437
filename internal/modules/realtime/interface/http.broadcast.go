package transport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"alertaUtec/internal/modules/realtime/application/port"
	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/shared/apperrors"
	"alertaUtec/internal/shared/httputil"
)

const maxNotifyBody = 64 << 10

// NewNotifyHTTPHandler serves POST /notify: the body {kind, incidenteId, ...} is pushed
// verbatim to every registered connection.
func NewNotifyHTTPHandler(broadcaster port.EventBroadcaster, mapper *httputil.ErrorMapper) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxNotifyBody))
		if err != nil {
			return httputil.Fail(c, mapper, apperrors.Validation("cuerpo de la solicitud inválido", err))
		}
		event, err := domain.ParseBroadcastEvent(raw)
		if err != nil {
			return httputil.Fail(c, mapper, apperrors.Validation("evento inválido: se requiere kind", err))
		}

		result := broadcaster.Broadcast(c.Request().Context(), event)

		slog.Info("notify http: event broadcast",
			slog.String("kind", string(event.Kind())),
			slog.String("incidenteId", event.IncidenteID()),
			slog.Int("sentTo", result.SentTo),
		)
		return httputil.OK(c, http.StatusOK, map[string]any{
			"message": "Notificación enviada",
			"sentTo":  result.SentTo,
		})
	}
}
