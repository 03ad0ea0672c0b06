// Package cache memoizes placeholder trees keyed by their literal segments.
//
// The cache is an explicit object owned by a compiler. It keeps entries in a
// doubly-linked LRU list and evicts the least recently used tree once the
// entry limit is reached. A limit of zero or less disables eviction.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/htmltag/internal/nodes"
)

// TemplateCache caches placeholder trees with LRU eviction
type TemplateCache struct {
	entries    map[string]*Entry
	mutex      sync.RWMutex
	maxEntries int
	// LRU implementation
	head *Entry
	tail *Entry
	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	builds    int64
	evictions int64
}

// Entry is a cached tree
type Entry struct {
	Key        string
	Tree       nodes.Node
	Segments   int
	CreatedAt  time.Time
	AccessedAt time.Time
	BuildTime  time.Duration
	// LRU doubly-linked list pointers
	prev *Entry
	next *Entry
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
	Builds     int64
	Evictions  int64
}

// HitRate returns hits divided by lookups, from 0.0 to 1.0.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a cache holding at most maxEntries trees.
func New(maxEntries int) *TemplateCache {
	cache := &TemplateCache{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
	}

	// Initialize LRU doubly-linked list with dummy head and tail
	cache.head = &Entry{}
	cache.tail = &Entry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Key derives the cache key for a literal segment sequence. Every segment is
// length-prefixed so distinct sequences never share a key.
func Key(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	b.WriteString(strconv.Itoa(len(segments)))
	return b.String()
}

// Get retrieves a tree from the cache
func (tc *TemplateCache) Get(key string) (nodes.Node, bool) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	entry, exists := tc.entries[key]
	if !exists {
		atomic.AddInt64(&tc.misses, 1)
		return nil, false
	}

	// Move to front (mark as recently used)
	tc.moveToFront(entry)
	entry.AccessedAt = time.Now()
	atomic.AddInt64(&tc.hits, 1)
	return entry.Tree, true
}

// Set stores a tree unless one is already cached under key, and returns the
// tree that ends up cached. The first writer wins so every caller shares
// one tree per key.
func (tc *TemplateCache) Set(key string, tree nodes.Node) nodes.Node {
	return tc.set(key, tree, 0, 0)
}

func (tc *TemplateCache) set(key string, tree nodes.Node, segments int, took time.Duration) nodes.Node {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if existing, exists := tc.entries[key]; exists {
		tc.moveToFront(existing)
		return existing.Tree
	}

	tc.evictIfNeeded()

	now := time.Now()
	entry := &Entry{
		Key:        key,
		Tree:       tree,
		Segments:   segments,
		CreatedAt:  now,
		AccessedAt: now,
		BuildTime:  took,
	}
	tc.entries[key] = entry
	tc.addToFront(entry)
	return tree
}

// GetOrBuild returns the cached tree for segments, building it on a miss.
// The build runs without holding the lock; concurrent misses on the same
// key may build twice, and all callers receive the tree stored first.
func (tc *TemplateCache) GetOrBuild(segments []string, build func() (nodes.Node, error)) (nodes.Node, error) {
	key := Key(segments)
	if tree, ok := tc.Get(key); ok {
		return tree, nil
	}

	start := time.Now()
	tree, err := build()
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&tc.builds, 1)
	return tc.set(key, tree, len(segments), time.Since(start)), nil
}

// evictIfNeeded evicts entries if the cache is full
func (tc *TemplateCache) evictIfNeeded() {
	if tc.maxEntries <= 0 {
		return
	}

	// Efficient LRU eviction - remove from tail (least recently used)
	for len(tc.entries) >= tc.maxEntries && tc.tail.prev != tc.head {
		lru := tc.tail.prev
		tc.removeFromList(lru)
		delete(tc.entries, lru.Key)
		atomic.AddInt64(&tc.evictions, 1)
	}
}

// Len returns the number of cached trees.
func (tc *TemplateCache) Len() int {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return len(tc.entries)
}

// Clear clears all cache entries and resets statistics
func (tc *TemplateCache) Clear() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.entries = make(map[string]*Entry)

	// Reset LRU list
	tc.head.next = tc.tail
	tc.tail.prev = tc.head

	// Reset statistics
	atomic.StoreInt64(&tc.hits, 0)
	atomic.StoreInt64(&tc.misses, 0)
	atomic.StoreInt64(&tc.builds, 0)
	atomic.StoreInt64(&tc.evictions, 0)
}

// Stats returns a snapshot of the cache counters.
func (tc *TemplateCache) Stats() Stats {
	tc.mutex.RLock()
	count := len(tc.entries)
	tc.mutex.RUnlock()

	return Stats{
		Entries:    count,
		MaxEntries: tc.maxEntries,
		Hits:       atomic.LoadInt64(&tc.hits),
		Misses:     atomic.LoadInt64(&tc.misses),
		Builds:     atomic.LoadInt64(&tc.builds),
		Evictions:  atomic.LoadInt64(&tc.evictions),
	}
}

// Entries returns the cached entries from most to least recently used.
func (tc *TemplateCache) Entries() []Entry {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	out := make([]Entry, 0, len(tc.entries))
	for e := tc.head.next; e != tc.tail; e = e.next {
		cp := *e
		cp.prev, cp.next = nil, nil
		out = append(out, cp)
	}
	return out
}

// LRU doubly-linked list operations
func (tc *TemplateCache) addToFront(entry *Entry) {
	entry.prev = tc.head
	entry.next = tc.head.next
	tc.head.next.prev = entry
	tc.head.next = entry
}

func (tc *TemplateCache) removeFromList(entry *Entry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (tc *TemplateCache) moveToFront(entry *Entry) {
	tc.removeFromList(entry)
	tc.addToFront(entry)
}
