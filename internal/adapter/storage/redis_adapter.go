package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisAdapter is the advisory cache. MySQL owns the truth; entries here
// are refreshed after commits and may be stale or evicted at any time.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetStock(ctx context.Context, bloodType domain.BloodType, units int) error {
	return r.client.Set(ctx, stockKeyPrefix+string(bloodType), units, 0).Err()
}

func (r *RedisAdapter) StockSnapshot(ctx context.Context) (map[domain.BloodType]int, error) {
	types := domain.AllBloodTypes()
	keys := make([]string, len(types))
	for i, bt := range types {
		keys[i] = stockKeyPrefix + string(bt)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[domain.BloodType]int, len(types))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // no cached value for this type
		}
		units, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		snapshot[types[i]] = units
	}
	return snapshot, nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisAdapter) ClearIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
