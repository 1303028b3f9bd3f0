package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache bounds memory with least-recently-used eviction and expires
// entries after a fixed TTL. Safe for concurrent use.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(e)

	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *LRUCache[T]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doomed []*list.Element
	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			doomed = append(doomed, elem)
		}
	}
	for _, elem := range doomed {
		c.removeElement(elem)
	}
	return len(doomed)
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

// CleanExpired drops expired entries and reports how many were removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var doomed []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			doomed = append(doomed, elem)
		}
	}
	for _, elem := range doomed {
		c.removeElement(elem)
	}
	return len(doomed)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
