// Package cooldown deduplicates alerts per instrument and minute.
package cooldown

import (
	"fmt"
	"sync"
	"time"
)

const DefaultCapacity = 5000

// Cache is a capacity-bounded set of (instrument id, minute bucket)
// keys. Eviction is FIFO by insertion order. The check-and-insert in
// ShouldAlert is atomic, so two concurrent ticks for the same
// instrument cannot both be granted the same minute.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]struct{}
	order    []string
	capacity int
	now      func() time.Time
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]struct{}),
		capacity: capacity,
		now:      time.Now,
	}
}

// ShouldAlert reports whether an alert for id is still unsent in the
// current minute bucket. The first caller per bucket takes the lock
// and gets true; everyone else gets false until the minute rolls over.
func (c *Cache) ShouldAlert(id string) bool {
	key := fmt.Sprintf("%s-%d", id, c.now().UnixMilli()/60_000)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return false
	}

	c.entries[key] = struct{}{}
	c.order = append(c.order, key)

	if len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	return true
}

// Len reports the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
