package cache

import (
	"log"
	"sync"
	"time"
)

// Defaults for the memoization layer.
const (
	DefaultCapacity = 100
	DefaultTTL      = 24 * time.Hour
)

// Entry is one cached record as seen by the durable backing store.
type Entry struct {
	Key         string
	Data        []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AccessCount int64
}

// Backing is the optional durable store behind the in-memory structure.
// Every method is best-effort: failures degrade the cache to memory-only.
type Backing interface {
	// GetEntry returns the stored entry or nil when absent.
	GetEntry(key string) (*Entry, error)
	PutEntry(e Entry) error
	DeleteEntry(key string) error
	// DeleteExpired purges entries past their TTL and reports how many.
	DeleteExpired(now time.Time) (int, error)
	ClearEntries() error
}

// node is one arena slot of the recency list. Links are indices into the
// arena rather than pointers, so promote/evict never create cycles for the
// garbage collector to trace.
type node struct {
	entry Entry
	prev  int
	next  int
}

const nilIdx = -1

// LRU is a bounded, time-expiring cache. All operations take the one
// exclusive lock: promote and evict are multi-step list splices that are not
// individually atomic.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration

	arena []node
	free  []int          // Recycled arena slots.
	index map[string]int // Key to arena slot.
	head  int            // Most recently used.
	tail  int            // Least recently used.

	hits   int64
	misses int64

	backing Backing

	// now is the wall clock, replaceable in tests.
	now func() time.Time
}

// Option configures an LRU.
type Option func(*LRU)

// WithCapacity bounds the number of in-memory entries.
func WithCapacity(n int) Option {
	return func(c *LRU) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithTTL sets the expiry applied at insertion time.
func WithTTL(d time.Duration) Option {
	return func(c *LRU) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithBacking attaches a durable store. Pass nil for memory-only operation.
func WithBacking(b Backing) Option {
	return func(c *LRU) { c.backing = b }
}

// NewLRU builds a cache with the given options.
func NewLRU(opts ...Option) *LRU {
	c := &LRU{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		index:    make(map[string]int),
		head:     nilIdx,
		tail:     nilIdx,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.arena = make([]node, 0, c.capacity)
	return c
}

// Get returns the cached data for key, promoting the entry to
// most-recently-used. A hit past its TTL is evicted and counted as a miss.
// On an in-memory miss the durable store is consulted best-effort.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key, c.now())
}

func (c *LRU) get(key string, now time.Time) ([]byte, bool) {
	if idx, ok := c.index[key]; ok {
		if !now.Before(c.arena[idx].entry.ExpiresAt) {
			c.evict(idx)
			c.misses++
			return nil, false
		}
		c.arena[idx].entry.AccessCount++
		c.promote(idx)
		c.hits++
		return c.arena[idx].entry.Data, true
	}

	// Fall back to the durable store; absence or failure is a plain miss.
	if c.backing != nil {
		e, err := c.backing.GetEntry(key)
		if err != nil {
			log.Printf("cache: durable lookup for %s failed: %v", key, err)
		} else if e != nil && now.Before(e.ExpiresAt) {
			e.AccessCount++
			c.insert(*e)
			c.hits++
			return e.Data, true
		}
	}

	c.misses++
	return nil, false
}

// Set stores data under key at the most-recently-used position with
// TTL-based expiry, evicting the least-recently-used entry at capacity.
func (c *LRU) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.insert(Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
}

// insert places e at the head, overwriting any entry under the same key and
// evicting the tail when over capacity. Write-through to the durable store
// is best-effort.
func (c *LRU) insert(e Entry) {
	if idx, ok := c.index[e.Key]; ok {
		c.arena[idx].entry = e
		c.promote(idx)
	} else {
		for len(c.index) >= c.capacity && c.tail != nilIdx {
			c.evict(c.tail)
		}
		idx := c.alloc(e)
		c.index[e.Key] = idx
		c.linkFront(idx)
	}

	if c.backing != nil {
		if err := c.backing.PutEntry(e); err != nil {
			log.Printf("cache: durable write for %s failed: %v", e.Key, err)
		}
	}
}

// CleanupExpired sweeps every entry past its TTL out of memory and the
// durable store. Returns the number of in-memory evictions.
func (c *LRU) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for idx := c.tail; idx != nilIdx; {
		prev := c.arena[idx].prev
		if !now.Before(c.arena[idx].entry.ExpiresAt) {
			c.evict(idx)
			removed++
		}
		idx = prev
	}

	if c.backing != nil {
		if _, err := c.backing.DeleteExpired(now); err != nil {
			log.Printf("cache: durable expiry sweep failed: %v", err)
		}
	}
	return removed
}

// Clear drops every entry from memory and the durable store.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.arena = c.arena[:0]
	c.free = c.free[:0]
	c.index = make(map[string]int)
	c.head, c.tail = nilIdx, nilIdx

	if c.backing != nil {
		if err := c.backing.ClearEntries(); err != nil {
			log.Printf("cache: durable clear failed: %v", err)
		}
	}
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	HitCount    int64   `json:"hit_count"`
	MissCount   int64   `json:"miss_count"`
	HitRate     float64 `json:"hit_rate"`
	Entries     int     `json:"entries"`
	ApproxBytes int64   `json:"approx_bytes"`
}

// GetStats reports hit/miss counters and an approximate memory footprint.
func (c *LRU) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bytes int64
	for _, idx := range c.index {
		bytes += int64(len(c.arena[idx].entry.Key) + len(c.arena[idx].entry.Data))
	}

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		HitCount:    c.hits,
		MissCount:   c.misses,
		HitRate:     rate,
		Entries:     len(c.index),
		ApproxBytes: bytes,
	}
}

// Len returns the number of in-memory entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// alloc takes a slot from the free list or grows the arena.
func (c *LRU) alloc(e Entry) int {
	if n := len(c.free); n > 0 {
		idx := c.free[n-1]
		c.free = c.free[:n-1]
		c.arena[idx] = node{entry: e, prev: nilIdx, next: nilIdx}
		return idx
	}
	c.arena = append(c.arena, node{entry: e, prev: nilIdx, next: nilIdx})
	return len(c.arena) - 1
}

// unlink splices idx out of the recency list.
func (c *LRU) unlink(idx int) {
	n := c.arena[idx]
	if n.prev != nilIdx {
		c.arena[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nilIdx {
		c.arena[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	c.arena[idx].prev = nilIdx
	c.arena[idx].next = nilIdx
}

// linkFront makes idx the most-recently-used node.
func (c *LRU) linkFront(idx int) {
	c.arena[idx].prev = nilIdx
	c.arena[idx].next = c.head
	if c.head != nilIdx {
		c.arena[c.head].prev = idx
	}
	c.head = idx
	if c.tail == nilIdx {
		c.tail = idx
	}
}

// promote moves an existing node to the front.
func (c *LRU) promote(idx int) {
	if c.head == idx {
		return
	}
	c.unlink(idx)
	c.linkFront(idx)
}

// evict removes a node from memory, the index and the durable store.
func (c *LRU) evict(idx int) {
	key := c.arena[idx].entry.Key
	c.unlink(idx)
	delete(c.index, key)
	c.free = append(c.free, idx)

	if c.backing != nil {
		if err := c.backing.DeleteEntry(key); err != nil {
			log.Printf("cache: durable delete for %s failed: %v", key, err)
		}
	}
}
