package port

import (
	"context"
	"errors"

	"alertaUtec/internal/modules/realtime/domain"
)

// ErrRegistryUnavailable wraps storage failures; callers may retry the whole operation.
var ErrRegistryUnavailable = errors.New("connection registry unavailable")

// ConnectionRegistry es el registro durable de conexiones vivas. Ninguna caché en memoria es autoritativa.
type ConnectionRegistry interface {
	// Register is an idempotent upsert; metadata follows last write wins.
	Register(ctx context.Context, conn domain.Connection) error
	// Unregister is an idempotent delete; an absent id is not an error.
	Unregister(ctx context.Context, connectionID string) error
	// ListAll returns the full current snapshot, following storage cursors until exhausted.
	ListAll(ctx context.Context) ([]domain.Connection, error)
}

// DeliveryChannel empuja un payload a una conexión concreta. Failures wrap domain.ErrGone
// or domain.ErrTransient. It never retries.
type DeliveryChannel interface {
	Send(ctx context.Context, conn domain.Connection, payload []byte) error
}

// NodeLiveness reports whether the gateway instance owning a socket is still running.
type NodeLiveness interface {
	Alive(ctx context.Context, nodeID string) (bool, error)
}

// EventBroadcaster fans one event out to every registered connection. It never fails its
// caller; the result is informational.
type EventBroadcaster interface {
	Broadcast(ctx context.Context, event domain.BroadcastEvent) domain.BroadcastResult
}
