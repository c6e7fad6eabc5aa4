package recommend

import (
	"context"
	"sync"

	"github.com/anilogapp/anilog-server/internal/domain"
)

// Cache memoizes the most recent recommendation result against a
// fingerprint of the inputs that influence it. Exactly one slot: any input
// change invalidates the whole entry, and the latest computation wins.
type Cache struct {
	engine *Engine

	mu    sync.Mutex
	entry *cacheEntry
}

type cacheEntry struct {
	results     []domain.Title
	fingerprint inputFingerprint
	limit       int
}

// NewCache creates a cache over the given engine.
func NewCache(engine *Engine) *Cache {
	return &Cache{engine: engine}
}

// GetOrCompute returns the cached recommendation list when the three input
// fingerprints (watchlist, watched list, ratings by title id) all match the
// current inputs; otherwise it recomputes Analyze -> Recommend, stores the
// new result, and returns it. A fingerprint match means zero catalog calls.
func (c *Cache) GetOrCompute(ctx context.Context, watchlist, watched []domain.Title, ratings []domain.Rating, limit int) []domain.Title {
	fp := fingerprintInputs(watchlist, watched, ratings)

	c.mu.Lock()
	if c.entry != nil && c.entry.fingerprint == fp && c.entry.limit == limit {
		cached := append([]domain.Title(nil), c.entry.results...)
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	prefs := Analyze(ratings, watched)
	results := c.engine.Recommend(ctx, prefs, watched, limit)

	c.mu.Lock()
	c.entry = &cacheEntry{
		results:     append([]domain.Title(nil), results...),
		fingerprint: fp,
		limit:       limit,
	}
	c.mu.Unlock()

	return results
}

// Invalidate drops the cached entry, forcing the next call to recompute.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}
