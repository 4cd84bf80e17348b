package render

import (
	"bytes"
	"image/png"
	"sync"

	"dogwalk/internal/game"
)

// DefaultCacheSize bounds the preview cache. Catalogs are small; the
// bound only matters when operators hot-swap config files repeatedly.
const DefaultCacheSize = 32

// Cache memoizes encoded map previews keyed by map id, with LRU
// eviction. Safe for concurrent handlers.
type Cache struct {
	mu      sync.Mutex
	images  map[string][]byte
	order   []string // LRU order, oldest first
	maxSize int
}

// NewCache builds a cache holding up to maxSize encoded previews.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		images:  make(map[string][]byte),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// PNG returns the encoded preview for m, rendering it on first use.
func (c *Cache) PNG(m *game.Map) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.images[m.ID]; ok {
		c.bump(m.ID)
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Preview(m)); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	if len(c.images) >= c.maxSize {
		c.evict()
	}
	c.images[m.ID] = data
	c.order = append(c.order, m.ID)
	return data, nil
}

// Size reports how many previews are cached.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

func (c *Cache) bump(id string) {
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}

func (c *Cache) evict() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.images, oldest)
}
