package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUCache holds at most maxSize entries in process. Entries expire ttl after
// their last Set; reads refresh recency but not expiry.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	byKey map[string]*list.Element
	order *list.List // front is most recently used
}

type lruEntry[T any] struct {
	key     string
	value   T
	expires time.Time
}

func (e *lruEntry[T]) expired(now time.Time) bool {
	return now.After(e.expires)
}

var _ Cache[int] = (*LRUCache[int])(nil)

// NewLRUCache returns an empty cache. A non-positive maxSize keeps one entry.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: max(maxSize, 1),
		ttl:     ttl,
		now:     time.Now,
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

func (c *LRUCache[T]) Get(_ context.Context, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*lruEntry[T])
	if entry.expired(c.now()) {
		c.drop(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

// Set inserts or replaces key and evicts the least recently used entries
// beyond maxSize.
func (c *LRUCache[T]) Set(_ context.Context, key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &lruEntry[T]{key: key, value: value, expires: c.now().Add(c.ttl)}
	if el, ok := c.byKey[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return
	}
	c.byKey[key] = c.order.PushFront(entry)
	for c.order.Len() > c.maxSize {
		c.drop(c.order.Back())
	}
}

func (c *LRUCache[T]) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if el, ok := c.byKey[key]; ok {
			c.drop(el)
		}
	}
}

// CleanExpired drops expired entries and reports how many went. It makes the
// cache a Cleaner for Manager.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	dropped := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*lruEntry[T]).expired(now) {
			c.drop(el)
			dropped++
		}
		el = next
	}
	return dropped
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache[T]) drop(el *list.Element) {
	delete(c.byKey, el.Value.(*lruEntry[T]).key)
	c.order.Remove(el)
}
