package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"calscope/internal/domain"
	"calscope/internal/port"
)

// SearchCache is a bounded LRU of food-search results with a TTL. Invalidate
// bumps a generation so entries written before it are never served.
type SearchCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
	now     func() time.Time
}

type cacheEntry struct {
	foods     []domain.FoodItem
	timestamp time.Time
	gen       uint64
}

func NewSearchCache(maxSize int, ttl time.Duration) *SearchCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SearchCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(query string, limit int) string {
	hash := sha256.Sum256([]byte(query + "\x00" + strconv.Itoa(limit)))
	return hex.EncodeToString(hash[:16])
}

func (c *SearchCache) Get(query string, limit int) ([]domain.FoodItem, bool) {
	key := cacheKey(query, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl || entry.gen != c.gen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	c.moveToEnd(key)
	return append([]domain.FoodItem(nil), entry.foods...), true
}

func (c *SearchCache) Put(query string, limit int, foods []domain.FoodItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, limit)
	entry := &cacheEntry{
		foods:     append([]domain.FoodItem(nil), foods...),
		timestamp: c.now(),
		gen:       c.gen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry
	c.order = append(c.order, key)
}

func (c *SearchCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

func (c *SearchCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *SearchCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *SearchCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *SearchCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedSearcher serves repeated food searches from a SearchCache. Failed
// searches are not cached.
type CachedSearcher struct {
	searcher port.FoodSearcher
	cache    *SearchCache
}

func NewCachedSearcher(searcher port.FoodSearcher, cache *SearchCache) *CachedSearcher {
	return &CachedSearcher{
		searcher: searcher,
		cache:    cache,
	}
}

func (s *CachedSearcher) SearchFoods(ctx context.Context, query string, limit int) ([]domain.FoodItem, error) {
	if foods, hit := s.cache.Get(query, limit); hit {
		return foods, nil
	}

	foods, err := s.searcher.SearchFoods(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Put(query, limit, foods)
	return foods, nil
}
