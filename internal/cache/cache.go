// Package cache implements the process-wide sample cache: a map from
// (midi_number, layer_index) to a shared, immutable sample buffer.
// Writes happen only during an instrument load; reads happen from the
// control thread at note-on time. The audio thread never touches the
// cache directly - it holds its own buffer reference inside each Voice,
// acquired once at note-on (see SPEC_FULL.md §4.2, §9).
package cache

import (
	"sync"

	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
)

// Key identifies one cache slot.
type Key struct {
	MIDI  uint8
	Layer int
}

// Cache is a thread-safe map of Key to *buffer.Buffer.
type Cache struct {
	mu      sync.RWMutex
	buffers map[Key]*buffer.Buffer
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{buffers: make(map[Key]*buffer.Buffer)}
}

// Insert stores buf at key, replacing any existing entry.
func (c *Cache) Insert(key Key, buf *buffer.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers[key] = buf
}

// Get returns the buffer at key and whether it was present. The
// returned pointer is a cheap reference to the shared buffer - callers
// must not mutate its contents.
func (c *Cache) Get(key Key) (*buffer.Buffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, ok := c.buffers[key]
	return buf, ok
}

// Clear drops every entry. This only releases the cache's own
// references; any Voice already holding a buffer continues playing it
// uninterrupted (SPEC_FULL.md §9 "load while playing").
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffers = make(map[Key]*buffer.Buffer)
}

// Len reports the number of populated entries, mainly for tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}
