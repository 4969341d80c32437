package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"alertaUtec/internal/modules/incidents/application/usecase"
	"alertaUtec/internal/shared/apperrors"
	"alertaUtec/internal/shared/auth"
	"alertaUtec/internal/shared/httputil"
)

// Handlers serves the incident REST API.
type Handlers struct {
	create *usecase.CreateIncidentUseCase
	get    *usecase.GetIncidentUseCase
	list   *usecase.ListIncidentsUseCase
	update *usecase.UpdateStatusUseCase
	mapper *httputil.ErrorMapper
}

func NewHandlers(
	create *usecase.CreateIncidentUseCase,
	get *usecase.GetIncidentUseCase,
	list *usecase.ListIncidentsUseCase,
	update *usecase.UpdateStatusUseCase,
	mapper *httputil.ErrorMapper,
) *Handlers {
	if mapper == nil {
		mapper = httputil.NewErrorMapper()
	}
	return &Handlers{create: create, get: get, list: list, update: update, mapper: mapper}
}

// Register mounts the routes. createLimit guards POST /incidentes and staff guards the
// status change; either may be nil.
func (h *Handlers) Register(e *echo.Echo, createLimit, staff echo.MiddlewareFunc) {
	e.POST("/incidentes", h.Create, withOptional(createLimit)...)
	e.GET("/incidentes", h.List)
	e.GET("/incidentes/:id", h.Get)
	e.PATCH("/incidentes/:id/estado", h.UpdateStatus, withOptional(staff)...)
}

func withOptional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

func (h *Handlers) Create(c echo.Context) error {
	var in usecase.CreateIncidentInput
	if err := c.Bind(&in); err != nil {
		return httputil.Fail(c, h.mapper, apperrors.Validation("cuerpo de la solicitud inválido", err))
	}
	out, err := h.create.Execute(c.Request().Context(), in)
	if err != nil {
		return httputil.Fail(c, h.mapper, err)
	}
	return httputil.OK(c, http.StatusCreated, map[string]any{
		"message":   "Incidente creado",
		"incidente": out.Incident,
	})
}

func (h *Handlers) List(c echo.Context) error {
	items, err := h.list.Execute(c.Request().Context())
	if err != nil {
		return httputil.Fail(c, h.mapper, err)
	}
	return httputil.OK(c, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *Handlers) Get(c echo.Context) error {
	incident, err := h.get.Execute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err)
	}
	return httputil.OK(c, http.StatusOK, map[string]any{"incidente": incident})
}

type updateStatusRequest struct {
	NuevoEstado string `json:"nuevoEstado"`
}

func (h *Handlers) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return httputil.Fail(c, h.mapper, apperrors.Validation("cuerpo de la solicitud inválido", err))
	}

	out, err := h.update.Execute(c.Request().Context(), usecase.UpdateStatusInput{
		IncidenteID: c.Param("id"),
		NuevoEstado: req.NuevoEstado,
	})
	if err != nil {
		return httputil.Fail(c, h.mapper, err)
	}

	actor := "anonymous"
	if claims, ok := auth.ClaimsFrom(c); ok {
		actor = claims.Email
	}
	slog.Info("incident estado changed via http",
		slog.String("incidenteId", out.IncidenteID),
		slog.String("estado", string(out.Estado)),
		slog.String("by", actor),
		slog.Int("sentTo", out.Broadcast.SentTo),
	)
	return httputil.OK(c, http.StatusOK, map[string]any{
		"incidenteId": out.IncidenteID,
		"estado":      out.Estado,
	})
}
