package cache

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v9"
	"github.com/umalmyha/leads/internal/model"
	"github.com/vmihailenco/msgpack/v5"
	"time"
)

const exportVersionKey = "clients:export:version"

type redisClientCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClientCache builds redis ClientCache with snapshots living for ttl
func NewRedisClientCache(client *redis.Client, ttl time.Duration) ClientCache {
	return &redisClientCache{client: client, ttl: ttl}
}

func (r *redisClientCache) Snapshot(ctx context.Context) ([]*model.Client, int64, error) {
	version, err := r.version(ctx)
	if err != nil {
		return nil, 0, err
	}

	res, err := r.client.Get(ctx, r.key(version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, version, nil
		}
		return nil, 0, err
	}

	clients := make([]*model.Client, 0)
	if err := msgpack.Unmarshal(res, &clients); err != nil {
		return nil, 0, err
	}
	return clients, version, nil
}

func (r *redisClientCache) Store(ctx context.Context, version int64, clients []*model.Client) error {
	encoded, err := msgpack.Marshal(clients)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(version), encoded, r.ttl).Err()
}

func (r *redisClientCache) Evict(ctx context.Context) error {
	version, err := r.client.Incr(ctx, exportVersionKey).Result()
	if err != nil {
		return err
	}
	return r.client.Del(ctx, r.key(version-1)).Err()
}

func (r *redisClientCache) version(ctx context.Context) (int64, error) {
	version, err := r.client.Get(ctx, exportVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

func (r *redisClientCache) key(version int64) string {
	return fmt.Sprintf("clients:export:%d", version)
}
