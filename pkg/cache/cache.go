// Package cache stores rendered SVG artifacts keyed by the full render
// configuration, so repeated renders of the same part are served without
// launching the external renderer again.
//
// Three backends are provided:
//   - FileCache: per-user cache directory, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is the backend interface. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLRender is how long cached artifacts stay valid. Renders are
// deterministic for a given library version, so the TTL mainly bounds disk
// growth after library upgrades.
const TTLRender = 7 * 24 * time.Hour

// RenderKey builds the cache key for one render: the part reference plus
// every option that affects the output, hashed so the key stays opaque and
// bounded in length.
func RenderKey(partRef string, opts any) string {
	return hashKey("render:"+partRef, opts)
}
