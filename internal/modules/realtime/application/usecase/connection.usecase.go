package usecase

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"alertaUtec/internal/modules/realtime/application/port"
	"alertaUtec/internal/modules/realtime/domain"
)

// ConnectionUseCase turns transport connect/disconnect signals into registry writes.
type ConnectionUseCase struct {
	registry port.ConnectionRegistry
	clock    clockwork.Clock
	nodeID   string
	endpoint string
}

func NewConnectionUseCase(registry port.ConnectionRegistry, clock clockwork.Clock, nodeID, endpoint string) *ConnectionUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ConnectionUseCase{registry: registry, clock: clock, nodeID: nodeID, endpoint: endpoint}
}

func (uc *ConnectionUseCase) Connect(ctx context.Context, connectionID string) (domain.Connection, error) {
	id, err := domain.NormalizeConnectionID(connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	conn := domain.Connection{
		ConnectionID: id,
		ConnectedAt:  uc.clock.Now().UTC(),
		NodeID:       uc.nodeID,
		Endpoint:     uc.endpoint,
	}
	if err := uc.registry.Register(ctx, conn); err != nil {
		return domain.Connection{}, err
	}
	slog.Info("connection registered", slog.String("connectionId", id), slog.String("nodeId", uc.nodeID))
	return conn, nil
}

// Disconnect is idempotent; an id that is already gone is not an error.
func (uc *ConnectionUseCase) Disconnect(ctx context.Context, connectionID string) error {
	id, err := domain.NormalizeConnectionID(connectionID)
	if err != nil {
		return err
	}
	if err := uc.registry.Unregister(ctx, id); err != nil {
		return err
	}
	slog.Info("connection unregistered", slog.String("connectionId", id))
	return nil
}
