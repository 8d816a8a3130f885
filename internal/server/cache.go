package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultMemoryCacheSize bounds the in-memory lookup cache.
const DefaultMemoryCacheSize = 10000

// MemoryCache is a process local LookupCache used when Redis is disabled.
// Entries are keyed by index version and callsign; when the cache is full the
// oldest entry is dropped.
type MemoryCache struct {
	sync.RWMutex
	entries map[string]LookupResult
	order   []string
	maxSize int
}

// NewMemoryCache creates an empty cache holding at most maxSize lookups.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		entries: make(map[string]LookupResult),
		maxSize: maxSize,
	}
}

func memoryKey(version, callsign string) string {
	return version + ":" + strings.ToUpper(callsign)
}

// Get copies the cached lookup into dst, which must be a *LookupResult.
func (c *MemoryCache) Get(_ context.Context, version, callsign string, dst interface{}) (bool, error) {
	out, ok := dst.(*LookupResult)
	if !ok {
		return false, fmt.Errorf("memory cache cannot decode into %T", dst)
	}

	c.RLock()
	defer c.RUnlock()
	res, found := c.entries[memoryKey(version, callsign)]
	if found {
		*out = res
	}
	return found, nil
}

// Set stores v, which must be a LookupResult.
func (c *MemoryCache) Set(_ context.Context, version, callsign string, v interface{}) error {
	res, ok := v.(LookupResult)
	if !ok {
		return fmt.Errorf("memory cache cannot store %T", v)
	}

	c.Lock()
	defer c.Unlock()

	key := memoryKey(version, callsign)
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = res

	// Remove oldest entries if cache exceeds max size
	for len(c.order) > c.maxSize {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return nil
}

// Len returns the number of cached lookups.
func (c *MemoryCache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.entries)
}
