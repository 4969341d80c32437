package handler

import (
	"context"
	"testing"

	"alertaUtec/internal/modules/notifications/application/usecase"
	"alertaUtec/internal/modules/notifications/domain"
)

type countingMailer struct{ n int }

func (m *countingMailer) Send(context.Context, domain.Email) error {
	m.n++
	return nil
}

func TestIncidentCreatedHandler(t *testing.T) {
	m := &countingMailer{}
	h := NewIncidentCreatedHandler("incidentes.created", usecase.NewNotifyIncidentUseCase(m, usecase.NotifyOptions{SecurityEmail: "s@utec.edu.pe"}))

	if h.Topic() != "incidentes.created" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
	msg := &domain.Message{
		Topic: "incidentes.created",
		Data: map[string]any{"incidente": map[string]any{
			"incidenteId":     "I1",
			"urgencia":        "critica",
			"emailReportante": "a@utec.edu.pe",
		}},
	}
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if m.n != 2 {
		t.Fatalf("expected 2 e-mails, got %d", m.n)
	}

	if err := h.Handle(context.Background(), &domain.Message{Data: "garbage"}); err == nil {
		t.Fatalf("expected error for undecodable payload")
	}
}
