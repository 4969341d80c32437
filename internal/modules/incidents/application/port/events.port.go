package port

import (
	"context"

	"alertaUtec/internal/modules/incidents/domain"
	realtime "alertaUtec/internal/modules/realtime/domain"
)

// Broadcaster pushes an event to every live client. It never fails its caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, event realtime.BroadcastEvent) realtime.BroadcastResult
}

// Notifier receives fire-and-forget incident-created events (e-mail, etc.).
type Notifier interface {
	IncidentCreated(ctx context.Context, incident domain.Incident) error
}
