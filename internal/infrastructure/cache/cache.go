// Package cache provides the byte-valued store backing the read-route
// response cache, with an in-process backend for development and tests and a
// Redis backend for multi-instance deployments.
package cache

import (
	"context"
	"time"
)

// Store holds opaque byte values under string keys with per-entry TTLs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
