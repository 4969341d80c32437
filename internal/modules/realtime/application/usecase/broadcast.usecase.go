package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"alertaUtec/internal/modules/realtime/application/port"
	"alertaUtec/internal/modules/realtime/domain"
	"alertaUtec/internal/platform/metrics"
)

type BroadcastOptions struct {
	// MaxConcurrency bounds in-flight sends; zero means one goroutine per connection.
	MaxConcurrency int
	// SendTimeout bounds each send when positive.
	SendTimeout time.Duration
}

// BroadcastUseCase snapshots the registry, sends to every connection concurrently and
// unregisters the ones reported gone.
type BroadcastUseCase struct {
	registry port.ConnectionRegistry
	channel  port.DeliveryChannel
	metrics  *metrics.Realtime
	opts     BroadcastOptions
}

func NewBroadcastUseCase(registry port.ConnectionRegistry, channel port.DeliveryChannel, m *metrics.Realtime, opts BroadcastOptions) *BroadcastUseCase {
	if m == nil {
		m = metrics.NewNopRealtime()
	}
	if opts.MaxConcurrency < 0 {
		opts.MaxConcurrency = 0
	}
	return &BroadcastUseCase{registry: registry, channel: channel, metrics: m, opts: opts}
}

// Broadcast runs to completion even if ctx is cancelled: once a trigger has persisted its
// write the fan-out is never abandoned halfway.
func (uc *BroadcastUseCase) Broadcast(ctx context.Context, event domain.BroadcastEvent) domain.BroadcastResult {
	started := time.Now()
	ctx = context.WithoutCancel(ctx)
	result := domain.BroadcastResult{Kind: event.Kind()}

	uc.metrics.Broadcasts.WithLabelValues(string(event.Kind())).Inc()
	defer func() { uc.metrics.BroadcastDuration.Observe(time.Since(started).Seconds()) }()

	if event.IsZero() {
		slog.Warn("broadcast: empty event skipped", slog.String("kind", string(event.Kind())))
		return result
	}

	conns, err := uc.registry.ListAll(ctx)
	if err != nil {
		slog.Error("broadcast: registry listing failed", slog.String("kind", string(event.Kind())), slog.Any("error", err))
		result.Err = err
		return result
	}
	result.SentTo = len(conns)
	if len(conns) == 0 {
		slog.Debug("broadcast: no connections", slog.String("kind", string(event.Kind())))
		return result
	}

	payload := event.Payload()
	var (
		mu   sync.Mutex
		gone []string
	)

	var g errgroup.Group
	if uc.opts.MaxConcurrency > 0 {
		g.SetLimit(uc.opts.MaxConcurrency)
	}
	for _, conn := range conns {
		g.Go(func() error {
			outcome := domain.ClassifyDelivery(uc.send(ctx, conn, payload))
			uc.metrics.Deliveries.WithLabelValues(string(outcome)).Inc()

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case domain.OutcomeDelivered:
				result.Delivered++
			case domain.OutcomeGone:
				result.Gone++
				gone = append(gone, conn.ConnectionID)
			default:
				result.Transient++
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range gone {
		if err := uc.registry.Unregister(ctx, id); err != nil {
			result.CleanupFailures++
			slog.Warn("broadcast: cleanup failed", slog.String("connectionId", id), slog.Any("error", err))
			continue
		}
		uc.metrics.RegistryCleanups.Inc()
	}

	slog.Info("broadcast: done",
		slog.String("kind", string(event.Kind())),
		slog.String("incidenteId", event.IncidenteID()),
		slog.Int("sentTo", result.SentTo),
		slog.Int("delivered", result.Delivered),
		slog.Int("gone", result.Gone),
		slog.Int("transient", result.Transient),
	)
	return result
}

func (uc *BroadcastUseCase) send(ctx context.Context, conn domain.Connection, payload []byte) (err error) {
	if uc.opts.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.SendTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("broadcast: send panicked", slog.String("connectionId", conn.ConnectionID), slog.Any("panic", r))
			err = domain.ErrTransient
		}
	}()

	err = uc.channel.Send(ctx, conn, payload)
	if err != nil && domain.ClassifyDelivery(err) == domain.OutcomeTransient {
		slog.Warn("broadcast: transient delivery failure", slog.String("connectionId", conn.ConnectionID), slog.Any("error", err))
	}
	return err
}

var _ port.EventBroadcaster = (*BroadcastUseCase)(nil)
