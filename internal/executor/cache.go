package executor

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/stepwright/internal/locator"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/platform"
)

// Page is a snapshot of the current page with its interactive elements.
type Page struct {
	State    platform.PageState
	Elements []model.Element
}

// pageEntry holds a cached page with its timestamp.
type pageEntry struct {
	page      Page
	timestamp time.Time
}

// SnapshotCache provides a TTL-based cache of page snapshots, one entry per
// browser session.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[platform.Browser]pageEntry
	ttl     time.Duration
}

// NewSnapshotCache creates a new cache. A ttl of 0 disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[platform.Browser]pageEntry),
		ttl:     ttl,
	}
}

// Page returns the cached snapshot of b if within TTL, otherwise reads and
// parses a fresh one.
func (c *SnapshotCache) Page(ctx context.Context, b platform.Browser) (Page, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if entry, ok := c.entries[b]; ok && time.Since(entry.timestamp) < c.ttl {
			page := entry.page
			c.mu.Unlock()
			return page, nil
		}
		c.mu.Unlock()
	}
	return c.Refresh(ctx, b)
}

// Refresh reads a fresh snapshot of b and stores it.
func (c *SnapshotCache) Refresh(ctx context.Context, b platform.Browser) (Page, error) {
	state, err := b.Snapshot(ctx)
	if err != nil {
		return Page{}, err
	}
	elements, err := locator.Extract(state.HTML)
	if err != nil {
		return Page{}, err
	}
	page := Page{State: state, Elements: elements}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[b] = pageEntry{page: page, timestamp: time.Now()}
		c.mu.Unlock()
	}
	return page, nil
}

// Invalidate removes the entry for b.
func (c *SnapshotCache) Invalidate(b platform.Browser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, b)
}

// InvalidateAll clears the entire cache.
func (c *SnapshotCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[platform.Browser]pageEntry)
}
