package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/orizon-lang/rangeopt/internal/codegen"
)

// CacheKey uniquely identifies a compilation: file name, source text and the
// generator switches.
type CacheKey string

// KeyFor derives the cache key of compiling src with opts.
func KeyFor(filename, src string, opts codegen.Options) CacheKey {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%t%t%t\x00", filename,
		opts.Loops.ConstBounded, opts.Loops.SimpleProgression, opts.Loops.Reversed)
	h.Write([]byte(src))
	return CacheKey(hex.EncodeToString(h.Sum(nil)))
}

// CacheStats exposes basic metrics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Entries   int64
	Evictions int64
}

// Cache is a thread-safe LRU cache of compiled units with a max entry count.
type Cache struct {
	mu       sync.Mutex
	capacity int
	llHead   *lruNode
	llTail   *lruNode
	table    map[CacheKey]*lruNode
	stats    CacheStats
}

type lruNode struct {
	key  CacheKey
	val  *Unit
	prev *lruNode
	next *lruNode
}

// NewCache creates a new cache with the given capacity (entries). If capacity<=0, defaults to 128.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 128
	}
	return &Cache{capacity: capacity, table: make(map[CacheKey]*lruNode)}
}

func (c *Cache) detach(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.llHead == n {
		c.llHead = n.next
	}
	if c.llTail == n {
		c.llTail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *Cache) pushFront(n *lruNode) {
	n.next = c.llHead
	if c.llHead != nil {
		c.llHead.prev = n
	}
	c.llHead = n
	if c.llTail == nil {
		c.llTail = n
	}
}

func (c *Cache) evictIfNeeded() {
	for len(c.table) > c.capacity && c.llTail != nil {
		n := c.llTail
		c.detach(n)
		delete(c.table, n.key)
		c.stats.Evictions++
	}
	c.stats.Entries = int64(len(c.table))
}

// Get returns the unit stored under key.
func (c *Cache) Get(key CacheKey) (*Unit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		c.detach(n)
		c.pushFront(n)
		c.stats.Hits++
		return n.val, true
	}
	c.stats.Misses++
	return nil, false
}

// Put stores u under key, evicting the least recently used entry when full.
func (c *Cache) Put(key CacheKey, u *Unit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		n.val = u
		c.detach(n)
		c.pushFront(n)
		return
	}
	n := &lruNode{key: key, val: u}
	c.pushFront(n)
	c.table[key] = n
	c.evictIfNeeded()
}

// Invalidate drops key from the cache.
func (c *Cache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.table[key]; ok {
		c.detach(n)
		delete(c.table, key)
		c.stats.Entries = int64(len(c.table))
	}
}

func (c *Cache) Stats() CacheStats { c.mu.Lock(); defer c.mu.Unlock(); return c.stats }

// Compile returns the cached unit for src or compiles and stores it. Failed
// compilations are not cached.
func (c *Cache) Compile(filename, src string, opts codegen.Options) (*Unit, error) {
	key := KeyFor(filename, src, opts)
	if u, ok := c.Get(key); ok {
		return u, nil
	}

	u, err := Compile(filename, src, opts)
	if err != nil {
		return nil, err
	}
	c.Put(key, u)
	return u, nil
}
