package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"alertaUtec/internal/modules/incidents/application/port"
	"alertaUtec/internal/modules/incidents/domain"
	realtime "alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/shared/apperrors"
)

const (
	msgStatusRequired = "ID de incidente y nuevo estado son requeridos"
	msgNotFound       = "Incidente no encontrado"
	msgUpdateFailed   = "Error al actualizar el estado del incidente"
)

type UpdateStatusInput struct {
	IncidenteID string
	NuevoEstado string
}

type UpdateStatusOutput struct {
	IncidenteID string
	Estado      domain.Estado
	Incident    *domain.Incident
	// Broadcast is informational; its failures never change the outcome.
	Broadcast realtime.BroadcastResult
}

// UpdateStatusUseCase persists a status change and then broadcasts it. Validation and
// lookup happen before any write; the broadcast runs only after the write succeeded.
type UpdateStatusUseCase struct {
	store       port.IncidentStore
	broadcaster port.Broadcaster
	clock       clockwork.Clock
	strict      bool
}

func NewUpdateStatusUseCase(store port.IncidentStore, broadcaster port.Broadcaster, clock clockwork.Clock, strictTransitions bool) *UpdateStatusUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UpdateStatusUseCase{store: store, broadcaster: broadcaster, clock: clock, strict: strictTransitions}
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, in UpdateStatusInput) (UpdateStatusOutput, error) {
	id := strings.TrimSpace(in.IncidenteID)
	raw := strings.TrimSpace(in.NuevoEstado)
	if id == "" || raw == "" {
		return UpdateStatusOutput{}, apperrors.Validation(msgStatusRequired, domain.ErrMissingInput)
	}
	nuevo, ok := domain.ParseEstado(raw)
	if !ok {
		msg := "Estado inválido. Valores permitidos: " + strings.Join(domain.ValidEstadoNames(), ", ")
		return UpdateStatusOutput{}, apperrors.Validation(msg, fmt.Errorf("%w: %q", domain.ErrInvalidEstado, raw))
	}

	current, err := uc.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			return UpdateStatusOutput{}, apperrors.NotFound(msgNotFound, err)
		}
		return UpdateStatusOutput{}, apperrors.Internal(msgUpdateFailed, err)
	}
	if uc.strict && !current.Estado.CanTransitionTo(nuevo) {
		msg := fmt.Sprintf("Transición no permitida: %s → %s", current.Estado, nuevo)
		return UpdateStatusOutput{}, apperrors.Validation(msg, domain.ErrInvalidTransition)
	}

	updated, err := uc.store.Update(ctx, id, domain.IncidentUpdate{
		Estado: nuevo,
		Append: domain.NewHistoryEntry(nuevo, uc.clock.Now()),
	})
	if err != nil {
		if errors.Is(err, domain.ErrIncidentNotFound) {
			return UpdateStatusOutput{}, apperrors.NotFound(msgNotFound, err)
		}
		return UpdateStatusOutput{}, apperrors.Internal(msgUpdateFailed, err)
	}
	slog.Info("incident estado updated",
		slog.String("incidenteId", id),
		slog.String("estado", string(nuevo)),
		slog.String("estadoAnterior", string(current.Estado)),
	)

	out := UpdateStatusOutput{IncidenteID: id, Estado: updated.Estado, Incident: updated}
	out.Broadcast = broadcastStatusChanged(ctx, uc.broadcaster, id, nuevo, current.Estado)
	return out, nil
}

func broadcastStatusChanged(ctx context.Context, b port.Broadcaster, id string, nuevo, anterior domain.Estado) realtime.BroadcastResult {
	if b == nil {
		return realtime.BroadcastResult{Kind: realtime.KindStatusChanged}
	}
	event, err := realtime.NewBroadcastEvent(realtime.KindStatusChanged, id, map[string]any{
		"nuevoEstado":    nuevo,
		"estadoAnterior": anterior,
	})
	if err != nil {
		slog.Error("status event build failed", slog.String("incidenteId", id), slog.Any("error", err))
		return realtime.BroadcastResult{Kind: realtime.KindStatusChanged, Err: err}
	}
	return b.Broadcast(ctx, event)
}
