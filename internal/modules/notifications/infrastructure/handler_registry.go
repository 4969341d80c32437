package infrastructure

import (
	"context"
	"log/slog"

	"alertaUtec/internal/modules/notifications/application/port"
	"alertaUtec/internal/modules/notifications/domain"
)

type HandlerRegistry struct {
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.handlers[h.Topic()] = h
}

// Topics lists the registered topics, the set the consumers subscribe to.
func (r *HandlerRegistry) Topics() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	return out
}

// Dispatch routes msg by topic; messages without a handler are dropped.
func (r *HandlerRegistry) Dispatch(ctx context.Context, msg *domain.Message) error {
	if handler, ok := r.handlers[msg.Topic]; ok {
		return handler.Handle(ctx, msg)
	}
	slog.Debug("no handler for topic", slog.String("topic", msg.Topic))
	return nil
}
