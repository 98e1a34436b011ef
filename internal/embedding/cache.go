package embedding

import (
	"container/list"
	"crypto/sha256"
	"sync"
)

// EmbeddingCache holds recently computed vectors keyed by a digest of the input text,
// so long resumes are not kept in memory as map keys. Capacity <= 0 disables it.
type EmbeddingCache struct {
	capacity int

	mu      sync.Mutex
	entries map[[sha256.Size]byte]*list.Element
	order   *list.List
}

type cached struct {
	digest [sha256.Size]byte
	vec    []float32
}

// NewEmbeddingCache returns a cache holding at most capacity vectors.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[[sha256.Size]byte]*list.Element),
		order:    list.New(),
	}
}

// Get returns a copy of the vector cached for text.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	if c.capacity <= 0 {
		return nil, false
	}
	d := sha256.Sum256([]byte(text))
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[d]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return append([]float32(nil), elem.Value.(*cached).vec...), true
}

// Set caches a copy of vec for text, dropping the least recently used vector when full.
func (c *EmbeddingCache) Set(text string, vec []float32) {
	if c.capacity <= 0 {
		return
	}
	d := sha256.Sum256([]byte(text))
	v := append([]float32(nil), vec...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[d]; ok {
		elem.Value.(*cached).vec = v
		c.order.MoveToFront(elem)
		return
	}
	c.entries[d] = c.order.PushFront(&cached{digest: d, vec: v})
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(*cached).digest)
	}
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
