package jwwblog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joywithwealth/jwwblog/content"
)

// IndexFetcher loads the post index.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) ([]content.Post, error)
}

// PostCache is an in-memory cache of the post index and its tags with TTL.
// Failed loads are not cached. Concurrent misses share one fetch, and the
// lock is never held while fetching.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	tags    []string
	fetched time.Time
	ttl     time.Duration
	src     IndexFetcher
	loads   singleflight.Group
}

type indexSnapshot struct {
	posts []content.Post
	tags  []string
}

// NewPostCache creates a PostCache in front of src. A ttl <= 0 disables caching.
func NewPostCache(src IndexFetcher, ttl time.Duration) *PostCache {
	return &PostCache{src: src, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) snapshot() (indexSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid() {
		return indexSnapshot{}, false
	}
	return indexSnapshot{posts: c.posts, tags: c.tags}, true
}

// load fetches the index once for all waiting callers. The fetch outlives a
// single caller's cancellation; the source's own timeout bounds it.
func (c *PostCache) load(ctx context.Context) (indexSnapshot, error) {
	v, err, _ := c.loads.Do("index", func() (any, error) {
		if snap, ok := c.snapshot(); ok {
			return snap, nil
		}
		posts, err := c.src.FetchIndex(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []content.Post{}
		}
		snap := indexSnapshot{posts: posts, tags: collectTags(posts)}

		c.mu.Lock()
		c.posts, c.tags, c.fetched = snap.posts, snap.tags, time.Now()
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return indexSnapshot{}, err
	}
	return v.(indexSnapshot), nil
}

// ensureLoaded returns cached posts and tags, loading them on a miss.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, []string, error) {
	if snap, ok := c.snapshot(); ok {
		return snap.posts, snap.tags, nil
	}
	snap, err := c.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.posts, snap.tags, nil
}

// FetchIndex implements IndexFetcher. Posts keep index order.
func (c *PostCache) FetchIndex(ctx context.Context) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	return posts, err
}

// ListPosts returns the index, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []content.Post
	for _, p := range posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns all unique tags, sorted.
func (c *PostCache) ListTags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

func collectTags(posts []content.Post) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			n := normalizeTag(t)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			tags = append(tags, n)
		}
	}
	sort.Strings(tags)
	return tags
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
