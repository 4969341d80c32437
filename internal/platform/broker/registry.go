package broker

import (
	"context"
	"log/slog"
	"sync"

	"alertaUtec/internal/modules/notifications/domain"
)

// Dispatcher routes a decoded message to its topic handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *domain.Message) error
}

// StartKafkaConsumers runs one consumer per topic and returns a WaitGroup that is done
// once every consumer has stopped after ctx is cancelled.
func StartKafkaConsumers(
	ctx context.Context,
	dispatcher Dispatcher,
	brokers []string,
	groupID string,
	topics []string,
) *sync.WaitGroup {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		// kafka.NewReader panics on an empty broker list
		slog.Warn("kafka consumers not started: no brokers configured")
		return &wg
	}
	for _, topic := range topics {
		wg.Add(1)
		go func(tp string) {
			defer wg.Done()
			slog.Info("kafka consumer started", slog.String("topic", tp), slog.String("groupId", groupID))
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			_ = consumer.Consume(ctx, func(msg *domain.Message) error {
				return dispatcher.Dispatch(ctx, msg)
			})
			slog.Info("kafka consumer stopped", slog.String("topic", tp))
		}(topic)
	}
	return &wg
}
