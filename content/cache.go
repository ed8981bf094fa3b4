package content

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/blogfront/filter"
)

// Cache is an in-memory copy of the manifest and its tag set with a TTL.
type Cache struct {
	mu      sync.RWMutex
	posts   []filter.PostSummary
	tags    []string
	fetched time.Time
	ttl     time.Duration
	loader  Loader
}

// NewCache creates a Cache backed by the given Loader. A non-positive ttl
// reloads on every read.
func NewCache(l Loader, ttl time.Duration) *Cache {
	return &Cache{loader: l, ttl: ttl}
}

// Loader returns the underlying loader.
func (c *Cache) Loader() Loader {
	return c.loader
}

func (c *Cache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *Cache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.loader.Manifest(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []filter.PostSummary{}
	}
	c.posts = posts
	c.tags = filter.Tags(posts)
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *Cache) ensureLoaded(ctx context.Context) ([]filter.PostSummary, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// Posts returns the manifest. Callers must not modify the returned slice.
func (c *Cache) Posts(ctx context.Context) ([]filter.PostSummary, error) {
	posts, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// Tags returns every distinct tag in the manifest, sorted.
func (c *Cache) Tags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// Lookup returns the manifest entry for file.
func (c *Cache) Lookup(ctx context.Context, file string) (filter.PostSummary, bool, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return filter.PostSummary{}, false, err
	}
	for _, p := range posts {
		if p.File == file {
			return p, true, nil
		}
	}
	return filter.PostSummary{}, false, nil
}

// Document loads a post document, bypassing the cache.
func (c *Cache) Document(ctx context.Context, file string) (string, error) {
	return c.loader.Document(ctx, file)
}
