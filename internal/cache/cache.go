// Package cache is a generic TTL key-value store used by the report
// layer. It is deliberately not injected anywhere near eligibility,
// exposure or pricing; those are always computed from the database.
package cache

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
