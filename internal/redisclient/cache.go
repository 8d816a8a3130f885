package redisclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack"
)

const lookupKeyPrefix = "ctydat:lookup:"

// LookupCache stores resolved callsigns in Redis, msgpack encoded. Keys carry
// the index version so entries from an older country file are never served.
type LookupCache struct {
	client *Client
	expiry time.Duration
}

// NewLookupCache wraps client. A zero expiry keeps entries until evicted.
func NewLookupCache(client *Client, expiry time.Duration) *LookupCache {
	return &LookupCache{client: client, expiry: expiry}
}

// LookupKey returns the Redis key for a callsign resolved against an index version.
func LookupKey(version, callsign string) string {
	return lookupKeyPrefix + version + ":" + strings.ToUpper(callsign)
}

// Get decodes the cached lookup into dst. It reports false, without error,
// on a cache miss.
func (c *LookupCache) Get(ctx context.Context, version, callsign string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, LookupKey(version, callsign)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cached lookup for %s: %w", callsign, err)
	}
	if err := msgpack.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached lookup for %s: %w", callsign, err)
	}
	return true, nil
}

// Set caches v for the callsign.
func (c *LookupCache) Set(ctx context.Context, version, callsign string, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode lookup for %s: %w", callsign, err)
	}
	if err := c.client.Set(ctx, LookupKey(version, callsign), data, c.expiry).Err(); err != nil {
		return fmt.Errorf("failed to cache lookup for %s: %w", callsign, err)
	}
	return nil
}
