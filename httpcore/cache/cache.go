// Package cache implements the engine's two-tier response cache: a
// bounded "fresh" tier serving cache hits directly, and an unbounded
// "stale" tier retaining just enough of an expired entry (its ETag and
// Last-Modified) to drive conditional revalidation.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/firasghr/httpengine/httpcore"
)

type entry struct {
	response     *httpcore.Response
	expires      time.Time
	etag         string
	lastModified string
}

// Cache caches GET responses by URL, matching httpcore.Session's Cache
// interface. The fresh tier is LRU-bounded (capacity fixed at construction)
// so the number of fresh entries cannot grow without limit; the stale tier
// is a plain map holding entries demoted from the fresh tier by capacity
// eviction or TTL expiry. It has no size bound of its own: an entry leaves
// it only through Set, HandleNotModified, Invalidate or Clear.
type Cache struct {
	mu         sync.Mutex
	fresh      *lru.Cache
	stale      map[string]entry
	defaultTTL time.Duration
}

// New returns a Cache whose fresh tier holds at most maxFresh entries and
// whose default TTL is defaultTTL (used when Set is not given an explicit
// override).
func New(maxFresh int, defaultTTL time.Duration) *Cache {
	if maxFresh <= 0 {
		maxFresh = 1
	}
	c := &Cache{stale: make(map[string]entry), defaultTTL: defaultTTL}
	fresh, err := lru.NewWithEvict(maxFresh, c.onEvict)
	if err != nil {
		// NewWithEvict only errors on size <= 0, already guarded above.
		fresh, _ = lru.New(maxFresh)
	}
	c.fresh = fresh
	return c
}

// onEvict runs (under the LRU's own internal lock, outside c.mu) whenever
// an entry leaves the fresh tier: capacity eviction, Remove and Purge alike.
// The entry is demoted to the stale tier so its validators survive for
// conditional revalidation; Invalidate and Clear empty the stale tier after
// removing from the fresh tier, so explicit removal leaves nothing behind.
func (c *Cache) onEvict(key, value interface{}) {
	e := value.(entry)
	c.mu.Lock()
	c.stale[key.(string)] = e
	c.mu.Unlock()
}

// Set stores resp as the cached response for url with the default TTL,
// recording its ETag/Last-Modified for future revalidation.
func (c *Cache) Set(url string, resp *httpcore.Response) {
	c.SetWithTTL(url, resp, c.defaultTTL)
}

// SetWithTTL stores resp with an explicit TTL override.
func (c *Cache) SetWithTTL(url string, resp *httpcore.Response, ttl time.Duration) {
	e := entry{response: resp, expires: time.Now().Add(ttl)}
	if v, ok := resp.Header("ETag"); ok {
		e.etag = v
	}
	if v, ok := resp.Header("Last-Modified"); ok {
		e.lastModified = v
	}

	c.mu.Lock()
	delete(c.stale, url)
	c.mu.Unlock()

	c.fresh.Add(url, e)
}

// Get returns the fresh cached response for url, if any. An expired fresh
// entry is demoted to the stale tier and reported as a miss.
func (c *Cache) Get(url string) (*httpcore.Response, bool) {
	v, ok := c.fresh.Get(url)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if time.Now().Before(e.expires) {
		return e.response, true
	}

	c.fresh.Remove(url)
	c.mu.Lock()
	c.stale[url] = e
	c.mu.Unlock()
	return nil, false
}

// GetValidationHeaders returns the conditional-request headers (If-None-Match
// / If-Modified-Since) for url's stale entry, or nil if there is none.
func (c *Cache) GetValidationHeaders(url string) []httpcore.HeaderPair {
	c.mu.Lock()
	e, ok := c.stale[url]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	var headers []httpcore.HeaderPair
	if e.etag != "" {
		headers = append(headers, httpcore.HeaderPair{Name: "If-None-Match", Value: e.etag})
	}
	if e.lastModified != "" {
		headers = append(headers, httpcore.HeaderPair{Name: "If-Modified-Since", Value: e.lastModified})
	}
	return headers
}

// HandleNotModified promotes url's stale entry back into the fresh tier
// after a 304 response, resetting its TTL.
func (c *Cache) HandleNotModified(url string) {
	c.mu.Lock()
	e, ok := c.stale[url]
	if ok {
		delete(c.stale, url)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	e.expires = time.Now().Add(c.defaultTTL)
	c.fresh.Add(url, e)
}

// Invalidate removes url from both tiers.
func (c *Cache) Invalidate(url string) {
	c.fresh.Remove(url)
	c.mu.Lock()
	delete(c.stale, url)
	c.mu.Unlock()
}

// Clear empties both tiers.
func (c *Cache) Clear() {
	c.fresh.Purge()
	c.mu.Lock()
	c.stale = make(map[string]entry)
	c.mu.Unlock()
}
