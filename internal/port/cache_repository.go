package port

import (
	"context"

	"github.com/dgarcia9/blood-bank/internal/core/domain"
)

// CacheRepository is the advisory fast path. MySQL stays authoritative;
// snapshot entries may be stale or missing and readers must fall back.
type CacheRepository interface {
	// SetStock overwrites the cached counter for one blood type.
	SetStock(ctx context.Context, bloodType domain.BloodType, units int) error

	// StockSnapshot returns the cached counters. Types without a cached
	// value are absent from the map.
	StockSnapshot(ctx context.Context) (map[domain.BloodType]int, error)

	// SetIdempotency sets a key for duplicate-request detection, returns
	// false if already present.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ClearIdempotency releases a key so the request id can be retried.
	ClearIdempotency(ctx context.Context, key string) error
}
