package common

import (
	"sync"
	"sync/atomic"
)

// Cache is a copy-on-write map for values computed once per key and read
// from many goroutines. Reads never lock.
type Cache[K comparable, V any] struct {
	value atomic.Value
	mu    sync.Mutex
}

// GetOrElseUpdate returns the cached value of key, computing it with create
// on a miss.
func (cache *Cache[K, V]) GetOrElseUpdate(key K, create func() V) V {
	lastCacheMap, _ := cache.value.Load().(map[K]V)
	if value, found := lastCacheMap[key]; found {
		return value
	}

	// Compute without the lock. Two goroutines may duplicate the work but
	// neither holds the other back.
	value := create()

	cache.mu.Lock()
	defer cache.mu.Unlock()
	lastCacheMap, _ = cache.value.Load().(map[K]V)
	if existing, found := lastCacheMap[key]; found {
		return existing
	}
	nextCacheMap := make(map[K]V, len(lastCacheMap)+1)
	for k, v := range lastCacheMap {
		nextCacheMap[k] = v
	}
	nextCacheMap[key] = value
	cache.value.Store(nextCacheMap)
	return value
}

// Len returns the number of cached entries.
func (cache *Cache[K, V]) Len() int {
	m, _ := cache.value.Load().(map[K]V)
	return len(m)
}
