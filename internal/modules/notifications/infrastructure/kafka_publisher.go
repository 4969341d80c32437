package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	incidents "alertaUtec/internal/modules/incidents/domain"
	"alertaUtec/internal/modules/notifications/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	publishQueueSize    = 256
	publishWriteTimeout = 5 * time.Second
)

// ErrPublishQueueFull is returned when the writer has fallen too far behind.
var ErrPublishQueueFull = errors.New("publish queue full")

// KafkaPublisher hands created incidents to the notifier worker. Messages are queued and
// written by a single background loop so callers never wait on the broker. With no
// brokers it is a no-op so single-node setups run without Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 {
		return &KafkaPublisher{topic: topic, now: time.Now}
	}
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           publishWriteTimeout,
	}, topic, publishQueueSize)
}

func newKafkaPublisher(w messageWriter, topic string, queueSize int) *KafkaPublisher {
	p := &KafkaPublisher{
		writer: w,
		topic:  topic,
		now:    time.Now,
		queue:  make(chan kafka.Message, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Enabled reports whether messages actually leave the process.
func (p *KafkaPublisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// IncidentCreated enqueues the envelope and returns without waiting for the broker.
// Write failures are logged by the background loop.
func (p *KafkaPublisher) IncidentCreated(_ context.Context, inc incidents.Incident) error {
	if !p.Enabled() {
		slog.Debug("kafka publisher disabled, notification skipped", slog.String("incidenteId", inc.IncidenteID))
		return nil
	}
	value, err := p.encode(inc)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publish %s: publisher closed", inc.IncidenteID)
	}
	select {
	case p.queue <- kafka.Message{Key: []byte(inc.IncidenteID), Value: value}:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", inc.IncidenteID, ErrPublishQueueFull)
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishWriteTimeout)
		err := p.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			slog.Warn("kafka publish failed", slog.String("topic", p.topic), slog.String("incidenteId", string(msg.Key)), slog.Any("error", err))
			continue
		}
		slog.Info("kafka message published", slog.String("topic", p.topic), slog.String("incidenteId", string(msg.Key)))
	}
}

func (p *KafkaPublisher) encode(inc incidents.Incident) ([]byte, error) {
	msg := domain.Message{
		Topic:      p.topic,
		Entity:     domain.EntityIncidentes,
		Action:     domain.ActionCreated,
		ResourceID: inc.IncidenteID,
		Data:       map[string]any{"incidente": inc},
		Timestamp:  p.now().UTC(),
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", inc.IncidenteID, err)
	}
	return value, nil
}

// Close drains the queue and then closes the writer.
func (p *KafkaPublisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return p.writer.Close()
}
