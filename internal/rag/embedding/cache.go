package embedding

import (
	"container/list"
	"context"
	"sync"
)

// CachedEmbedder keeps the most recent query embeddings. Questions are embedded twice
// per request (answer cache lookup and retrieval) and users repeat themselves, so a small
// LRU removes most query-side embedding calls. Batch calls pass through.
type CachedEmbedder struct {
	inner    Embedder
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []float32
}

func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	return &CachedEmbedder{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *CachedEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if v, ok := c.get(query); ok {
		return v, nil
	}
	v, err := c.inner.GetEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}
	c.set(query, v)
	return v, nil
}

func (c *CachedEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return c.inner.BatchEmbedding(ctx, chunks)
}

func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

func (c *CachedEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *CachedEmbedder) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

func (c *CachedEmbedder) set(key string, value []float32) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, value: value})

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}
