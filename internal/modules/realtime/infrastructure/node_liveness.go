package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"alertaUtec/internal/modules/realtime/application/port"
)

// RedisNodeLiveness keeps one expiring key per gateway node. A node is alive while
// its key exists; a crashed node simply stops refreshing it.
type RedisNodeLiveness struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewRedisNodeLiveness(rdb *goredis.Client, prefix string, ttl time.Duration, clock clockwork.Clock) *RedisNodeLiveness {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisNodeLiveness{rdb: rdb, prefix: prefix, ttl: ttl, clock: clock}
}

func (l *RedisNodeLiveness) key(nodeID string) string {
	return l.prefix + nodeID
}

// Heartbeat marks nodeID alive for one ttl.
func (l *RedisNodeLiveness) Heartbeat(ctx context.Context, nodeID string) error {
	if err := l.rdb.Set(ctx, l.key(nodeID), l.clock.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("heartbeat %s: %w", nodeID, err)
	}
	return nil
}

func (l *RedisNodeLiveness) Alive(ctx context.Context, nodeID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key(nodeID)).Result()
	if err != nil {
		return false, fmt.Errorf("liveness %s: %w", nodeID, err)
	}
	return n > 0, nil
}

// Forget removes the key so peers prune this node's rows immediately.
func (l *RedisNodeLiveness) Forget(ctx context.Context, nodeID string) error {
	return l.rdb.Del(ctx, l.key(nodeID)).Err()
}

// Run heartbeats every ttl/3 until ctx is done, then forgets the node.
func (l *RedisNodeLiveness) Run(ctx context.Context, nodeID string) {
	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Second
	}
	if err := l.Heartbeat(ctx, nodeID); err != nil {
		slog.Warn("node heartbeat failed", slog.String("node", nodeID), slog.Any("error", err))
	}
	ticker := l.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			forgetCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := l.Forget(forgetCtx, nodeID); err != nil {
				slog.Warn("node forget failed", slog.String("node", nodeID), slog.Any("error", err))
			}
			cancel()
			return
		case <-ticker.Chan():
			if err := l.Heartbeat(ctx, nodeID); err != nil {
				slog.Warn("node heartbeat failed", slog.String("node", nodeID), slog.Any("error", err))
			}
		}
	}
}

var _ port.NodeLiveness = (*RedisNodeLiveness)(nil)
