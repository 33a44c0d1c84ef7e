package llm

import (
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// suggestionCache remembers categories by normalized description.
type suggestionCache struct {
	store *ristretto.Cache[string, string]
	ttl   time.Duration
}

// newSuggestionCache creates a new cache with the specified TTL.
func newSuggestionCache(ttl time.Duration) (*suggestionCache, error) {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	store, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &suggestionCache{store: store, ttl: ttl}, nil
}

func cacheKey(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}

// get retrieves a suggestion if present and not expired.
func (c *suggestionCache) get(description string) (string, bool) {
	return c.store.Get(cacheKey(description))
}

// set stores a suggestion. Writes are visible once set returns.
func (c *suggestionCache) set(description, category string) {
	c.store.SetWithTTL(cacheKey(description), category, 1, c.ttl)
	c.store.Wait()
}

// Close releases the cache's background goroutines.
func (c *suggestionCache) Close() {
	c.store.Close()
}
