package memory

import (
	"container/list"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skillcompass/backend/pkg/logger"
)

const (
	DefaultMaxSize       = 500
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 5 * time.Minute

	keySeparator = "|"
)

// Cache is a TTL-expiring, capacity-bounded key/value store with LRU
// eviction. It is the single shared mutable resource between requests;
// one coarse mutex guards the map and the recency list together, which
// is sufficient because every operation is O(1) and short-lived.
type Cache struct {
	mu         sync.Mutex
	maxSize    int
	defaultTTL time.Duration
	entries    map[string]*list.Element
	recency    *list.List // front = most recently used

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

type entry struct {
	key    string
	value  interface{}
	expiry time.Time
}

type Config struct {
	MaxSize       int
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

func New(cfg Config) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	c := &Cache{
		maxSize:       cfg.MaxSize,
		defaultTTL:    cfg.DefaultTTL,
		entries:       make(map[string]*list.Element),
		recency:       list.New(),
		sweepInterval: cfg.SweepInterval,
		stopSweep:     make(chan struct{}),
	}

	go c.sweepLoop()

	return c
}

// BuildKey produces a deterministic key from a namespace prefix and a
// parameter set. Params are sorted by field name before joining, so
// equal (prefix, params) always yield the identical key regardless of
// the order callers assembled the map in. Cache hits across concurrent
// callers depend on this.
func BuildKey(prefix string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(params))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%s", name, params[name]))
	}

	return prefix + ":" + strings.Join(parts, keySeparator)
}

// Set stores value under key with expiry now + ttl (ttl <= 0 means the
// configured default). When the store is at capacity and the key is not
// already present, the least-recently-used entry is evicted before the
// insert, so size never exceeds capacity.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	expiry := time.Now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiry = expiry
		c.recency.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRU()
	}

	elem := c.recency.PushFront(&entry{key: key, value: value, expiry: expiry})
	c.entries[key] = elem
}

// Get returns the stored value if present and unexpired, promoting the
// entry to most-recently-used. An expired entry is deleted on read and
// reported as a miss; a miss is never an error.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)
	if time.Now().After(ent.expiry) {
		c.removeLocked(elem)
		logger.Debug("Cache entry expired on read", zap.String("key", key))
		return nil, false
	}

	c.recency.MoveToFront(elem)
	return ent.value, true
}

// GetOrCompute returns the cached value for key, or invokes producer on
// a miss, stores its result, and returns it. The second return reports
// whether the value came from the cache. A producer error propagates to
// the caller and nothing is cached: failed lookups are never cached as
// success, and failures are never cached as failures either, so every
// retry re-invokes the producer.
//
// The lock is not held across the producer call. Concurrent identical
// misses may each invoke the producer; last write wins. Collapsing
// those duplicates per key would be optional hardening, not something
// correctness here relies on.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, producer func() (interface{}, error)) (interface{}, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	value, err := producer()
	if err != nil {
		return nil, false, err
	}

	c.Set(key, value, ttl)
	return value, false, nil
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stop halts the background sweep. Entries already stored remain
// readable; lazy expiry on Get still applies.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopSweep)
	})
}

func (c *Cache) evictLRU() {
	elem := c.recency.Back()
	if elem == nil {
		return
	}
	ent := elem.Value.(*entry)
	c.removeLocked(elem)
	logger.Debug("Cache entry evicted", zap.String("key", ent.key))
}

func (c *Cache) removeLocked(elem *list.Element) {
	ent := elem.Value.(*entry)
	c.recency.Remove(elem)
	delete(c.entries, ent.key)
}

// sweepLoop bounds memory held by expired-but-unread entries. It is not
// required for correctness since Get expires lazily.
func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopSweep:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0

	var next *list.Element
	for elem := c.recency.Front(); elem != nil; elem = next {
		next = elem.Next()
		if now.After(elem.Value.(*entry).expiry) {
			c.removeLocked(elem)
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("Cache sweep completed", zap.Int("removed", removed), zap.Int("remaining", len(c.entries)))
	}
}
