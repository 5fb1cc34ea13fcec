package cache

import (
	"sync"

	"github.com/arloliu/debo/internal/hash"
)

// shardCount is the number of independently locked shards. Must be a power
// of two so paths map to shards with a mask.
const shardCount = 64

// Cache is a concurrency-safe map from topic path to the last value sent
// for that path. One Cache belongs to one session and is discarded with it.
//
// The cache owns its stored buffers: Put and Update store copies, and the
// slices handed out by Get are views that callers must not mutate.
//
// An absent entry is a normal condition, not an error; it means the next
// update for that path must transmit the full value rather than a delta.
type Cache struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// entry carries its own lock so that the get / generate-delta / put sequence
// for one path can be serialized without blocking other paths in the shard.
type entry struct {
	mu      sync.Mutex
	value   []byte
	present bool
}

// New creates an empty cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]*entry)
	}

	return c
}

func (c *Cache) shardFor(path string) *shard {
	return &c.shards[hash.Path(path)&(shardCount-1)]
}

// entryFor returns the entry for path, creating it if necessary.
func (s *shard) entryFor(path string) *entry {
	s.mu.RLock()
	e := s.entries[path]
	s.mu.RUnlock()
	if e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e = s.entries[path]; e == nil {
		e = &entry{}
		s.entries[path] = e
	}

	return e
}

// Get returns the last value stored for path. The returned slice is a
// non-owning view; callers must not modify it.
func (c *Cache) Get(path string) ([]byte, bool) {
	s := c.shardFor(path)
	s.mu.RLock()
	e := s.entries[path]
	s.mu.RUnlock()
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.present {
		return nil, false
	}

	return e.value, true
}

// Put stores a copy of value as the last value sent for path, replacing any
// previous entry atomically.
func (c *Cache) Put(path string, value []byte) {
	c.Update(path, func([]byte, bool) ([]byte, bool) {
		return value, true
	})
}

// Update runs fn under path's entry lock, passing the current value (and
// whether one exists). If fn returns keep, a copy of next replaces the
// entry; otherwise the entry is removed. Updates to other paths proceed
// concurrently.
func (c *Cache) Update(path string, fn func(old []byte, ok bool) (next []byte, keep bool)) {
	e := c.shardFor(path).entryFor(path)

	e.mu.Lock()
	defer e.mu.Unlock()

	next, keep := fn(e.value, e.present)
	if !keep {
		// Leave a tombstone rather than delete from the shard map here;
		// deleting needs the shard lock, which is always taken before the
		// entry lock. Remove and Clear purge tombstones.
		e.value = nil
		e.present = false

		return
	}

	stored := make([]byte, len(next))
	copy(stored, next)
	e.value = stored
	e.present = true
}

// Remove deletes every entry whose path matches the topic selector.
func (c *Cache) Remove(selector string) {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for path := range s.entries {
			if SelectorMatch(selector, path) {
				delete(s.entries, path)
			}
		}
		s.mu.Unlock()
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[string]*entry)
		s.mu.Unlock()
	}
}

// Len returns the number of cached values.
func (c *Cache) Len() int {
	count := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, e := range s.entries {
			e.mu.Lock()
			if e.present {
				count++
			}
			e.mu.Unlock()
		}
		s.mu.RUnlock()
	}

	return count
}
