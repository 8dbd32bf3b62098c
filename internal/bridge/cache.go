package bridge

import "sync"

// handleCache maps a segment name to the handle built for it. Entries are
// never evicted; they live as long as the cache's owner.
type handleCache struct {
	mu      sync.Mutex
	entries map[string]*Handle
}

// lookupOrCreate returns the cached handle for name, invoking factory and
// storing its result on a miss. The read-then-write runs under one lock.
func (c *handleCache) lookupOrCreate(name string, factory func() *Handle) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.entries[name]; ok {
		return h, false
	}
	if c.entries == nil {
		c.entries = make(map[string]*Handle)
	}
	h := factory()
	c.entries[name] = h
	return h, true
}

func (c *handleCache) lookup(name string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.entries[name]
	return h, ok
}

func (c *handleCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// drain empties the cache and returns what it held.
func (c *handleCache) drain() []*Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Handle, 0, len(c.entries))
	for _, h := range c.entries {
		out = append(out, h)
	}
	c.entries = nil
	return out
}
