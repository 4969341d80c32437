package usecase

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"alertaUtec/internal/modules/incidents/application/port"
	"alertaUtec/internal/modules/incidents/domain"
	realtime "alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/shared/apperrors"
)

const (
	msgCreateRequired = "tipo, descripcion, ubicacion y urgencia son requeridos"
	msgCreateFailed   = "Error al crear el incidente"
)

type CreateIncidentInput struct {
	Tipo            string `json:"tipo"`
	Descripcion     string `json:"descripcion"`
	Ubicacion       string `json:"ubicacion"`
	Urgencia        string `json:"urgencia"`
	EmailReportante string `json:"emailReportante"`
}

type CreateIncidentOutput struct {
	Incident  domain.Incident
	Broadcast realtime.BroadcastResult
}

// CreateIncidentUseCase stores a new pendiente incident, broadcasts it and hands it to
// the notifier. Only the store write can fail the call.
type CreateIncidentUseCase struct {
	store       port.IncidentStore
	broadcaster port.Broadcaster
	notifier    port.Notifier
	clock       clockwork.Clock
	newID       func() string
}

func NewCreateIncidentUseCase(store port.IncidentStore, broadcaster port.Broadcaster, notifier port.Notifier, clock clockwork.Clock) *CreateIncidentUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CreateIncidentUseCase{store: store, broadcaster: broadcaster, notifier: notifier, clock: clock, newID: uuid.NewString}
}

func (uc *CreateIncidentUseCase) Execute(ctx context.Context, in CreateIncidentInput) (CreateIncidentOutput, error) {
	incident, err := uc.validate(in)
	if err != nil {
		return CreateIncidentOutput{}, err
	}
	incident.IncidenteID = uc.newID()
	incident.Estado = domain.EstadoPendiente
	incident.FechaCreacion = uc.clock.Now().UTC()
	incident.Historial = []domain.HistoryEntry{}

	if err := uc.store.Put(ctx, &incident); err != nil {
		return CreateIncidentOutput{}, apperrors.Internal(msgCreateFailed, err)
	}
	slog.Info("incident created",
		slog.String("incidenteId", incident.IncidenteID),
		slog.String("tipo", string(incident.Tipo)),
		slog.String("urgencia", string(incident.Urgencia)),
	)

	out := CreateIncidentOutput{Incident: incident}
	out.Broadcast = uc.broadcast(ctx, incident)
	if uc.notifier != nil {
		if err := uc.notifier.IncidentCreated(context.WithoutCancel(ctx), incident); err != nil {
			slog.Warn("incident notification failed", slog.String("incidenteId", incident.IncidenteID), slog.Any("error", err))
		}
	}
	return out, nil
}

func (uc *CreateIncidentUseCase) validate(in CreateIncidentInput) (domain.Incident, error) {
	descripcion := strings.TrimSpace(in.Descripcion)
	ubicacion := strings.TrimSpace(in.Ubicacion)
	if strings.TrimSpace(in.Tipo) == "" || descripcion == "" || ubicacion == "" || strings.TrimSpace(in.Urgencia) == "" {
		return domain.Incident{}, apperrors.Validation(msgCreateRequired, domain.ErrMissingInput)
	}
	tipo, ok := domain.ParseTipo(in.Tipo)
	if !ok {
		return domain.Incident{}, apperrors.Validation("Tipo inválido: "+in.Tipo, domain.ErrInvalidCatalog)
	}
	urgencia, ok := domain.ParseUrgencia(in.Urgencia)
	if !ok {
		return domain.Incident{}, apperrors.Validation("Urgencia inválida: "+in.Urgencia, domain.ErrInvalidCatalog)
	}
	email := strings.TrimSpace(in.EmailReportante)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.Incident{}, apperrors.Validation("Email de reportante inválido", err)
		}
	}
	return domain.Incident{
		Tipo:            tipo,
		Descripcion:     descripcion,
		Ubicacion:       ubicacion,
		Urgencia:        urgencia,
		EmailReportante: email,
	}, nil
}

func (uc *CreateIncidentUseCase) broadcast(ctx context.Context, incident domain.Incident) realtime.BroadcastResult {
	if uc.broadcaster == nil {
		return realtime.BroadcastResult{Kind: realtime.KindIncidentCreated}
	}
	event, err := realtime.NewBroadcastEvent(realtime.KindIncidentCreated, incident.IncidenteID, map[string]any{
		"incidente": incident,
	})
	if err != nil {
		slog.Error("created event build failed", slog.String("incidenteId", incident.IncidenteID), slog.Any("error", err))
		return realtime.BroadcastResult{Kind: realtime.KindIncidentCreated, Err: err}
	}
	return uc.broadcaster.Broadcast(ctx, event)
}
