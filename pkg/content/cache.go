package content

import (
	"context"
	"sync"
)

func NewCached(src Source) *Cached {
	return &Cached{src: src}
}

// Cached memoises a source until Invalidate is called. Failed fetches are not cached.
type Cached struct {
	src Source

	lock       sync.RWMutex
	entries    []Entry
	packs      []Pack
	hasEntries bool
	hasPacks   bool
	generation uint64
}

func (c *Cached) Fetch(ctx context.Context) ([]Entry, error) {
	c.lock.RLock()
	if c.hasEntries {
		defer c.lock.RUnlock()
		return c.entries, nil
	}
	gen := c.generation
	c.lock.RUnlock()

	entries, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	// an invalidation raced the fetch, so the result may already be stale
	if gen == c.generation {
		c.entries = entries
		c.hasEntries = true
	}
	return entries, nil
}

func (c *Cached) Packs(ctx context.Context) ([]Pack, error) {
	c.lock.RLock()
	if c.hasPacks {
		defer c.lock.RUnlock()
		return c.packs, nil
	}
	gen := c.generation
	c.lock.RUnlock()

	packs, err := c.src.Packs(ctx)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if gen == c.generation {
		c.packs = packs
		c.hasPacks = true
	}
	return packs, nil
}

func (c *Cached) Invalidate() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = nil
	c.packs = nil
	c.hasEntries = false
	c.hasPacks = false
	c.generation++
}
