package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultHandleCacheSize = 64

// HandleCache keeps named values, evicting the least recently used once it
// is full. onEvict runs for evictions and explicit removals alike.
type HandleCache[V any] struct {
	cache *lru.Cache[string, V]
	mu    sync.Mutex
}

func NewHandleCache[V any](size int, onEvict func(name string, v V)) *HandleCache[V] {
	if size <= 0 {
		size = DefaultHandleCacheSize
	}
	cache, _ := lru.NewWithEvict(size, onEvict)

	return &HandleCache[V]{
		cache: cache,
	}
}

func (h *HandleCache[V]) Get(name string) (V, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cache.Get(name)
}

// Set stores v under name and reports whether an older entry was evicted.
func (h *HandleCache[V]) Set(name string, v V) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cache.Add(name, v)
}

func (h *HandleCache[V]) Remove(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cache.Remove(name)
}

func (h *HandleCache[V]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cache.Len()
}

// Purge drops every entry, running the eviction callback for each.
func (h *HandleCache[V]) Purge() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Purge()
}
