package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"alertaUtec/internal/modules/realtime/application/port"
	"alertaUtec/internal/modules/realtime/domain"
)

const defaultScanCount = 100

// RedisRegistry stores every connection as one field of a single hash:
// field = connection id, value = JSON metadata. HSET/HDEL give per-key atomicity.
type RedisRegistry struct {
	rdb       *goredis.Client
	key       string
	scanCount int64
}

func NewRedisRegistry(rdb *goredis.Client, key string) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, key: key, scanCount: defaultScanCount}
}

func (r *RedisRegistry) Register(ctx context.Context, conn domain.Connection) error {
	id, err := domain.NormalizeConnectionID(conn.ConnectionID)
	if err != nil {
		return err
	}
	conn.ConnectionID = id
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("marshal connection: %w", err)
	}
	if err := r.rdb.HSet(ctx, r.key, id, data).Err(); err != nil {
		return fmt.Errorf("%w: register %s: %v", port.ErrRegistryUnavailable, id, err)
	}
	return nil
}

func (r *RedisRegistry) Unregister(ctx context.Context, connectionID string) error {
	id, err := domain.NormalizeConnectionID(connectionID)
	if err != nil {
		return err
	}
	if err := r.rdb.HDel(ctx, r.key, id).Err(); err != nil {
		return fmt.Errorf("%w: unregister %s: %v", port.ErrRegistryUnavailable, id, err)
	}
	return nil
}

// ListAll walks the hash with HSCAN until the cursor returns to zero. HSCAN may
// repeat entries across pages, so results are deduplicated by id.
func (r *RedisRegistry) ListAll(ctx context.Context) ([]domain.Connection, error) {
	seen := make(map[string]struct{})
	var out []domain.Connection
	var cursor uint64

	for {
		kv, next, err := r.rdb.HScan(ctx, r.key, cursor, "", r.scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %v", port.ErrRegistryUnavailable, err)
		}
		for i := 0; i+1 < len(kv); i += 2 {
			id, raw := kv[i], kv[i+1]
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			var conn domain.Connection
			if err := json.Unmarshal([]byte(raw), &conn); err != nil {
				slog.Warn("registry: undecodable connection row", slog.String("connectionId", id), slog.Any("error", err))
				conn = domain.Connection{}
			}
			conn.ConnectionID = id
			out = append(out, conn)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

var _ port.ConnectionRegistry = (*RedisRegistry)(nil)
