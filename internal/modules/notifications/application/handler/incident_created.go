package handler

import (
	"context"
	"fmt"
	"log/slog"

	"alertaUtec/internal/modules/notifications/application/port"
	"alertaUtec/internal/modules/notifications/application/usecase"
	"alertaUtec/internal/modules/notifications/domain"
)

// IncidentCreatedHandler turns incident-created messages into e-mails.
type IncidentCreatedHandler struct {
	topic   string
	UseCase *usecase.NotifyIncidentUseCase
}

func NewIncidentCreatedHandler(topic string, uc *usecase.NotifyIncidentUseCase) *IncidentCreatedHandler {
	return &IncidentCreatedHandler{topic: topic, UseCase: uc}
}

func (h *IncidentCreatedHandler) Topic() string { return h.topic }

func (h *IncidentCreatedHandler) Handle(ctx context.Context, msg *domain.Message) error {
	inc, ok := domain.IncidentFromPayload(msg.Data)
	if !ok {
		slog.Warn("incident created: undecodable payload", slog.String("topic", msg.Topic), slog.String("resourceId", msg.ResourceID))
		return fmt.Errorf("incident created: no incident in message %q", msg.ResourceID)
	}
	_, err := h.UseCase.Execute(ctx, inc)
	return err
}

var _ port.TopicHandler = (*IncidentCreatedHandler)(nil)
