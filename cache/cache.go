// Package cache provides the bounded LRU frame cache with asynchronous
// prefetch that keeps mask lookups inside the editor's real-time
// budget.
//
// The cache knows nothing about where masks come from: loading is
// delegated to an injected Loader callback, which runs on a bounded
// worker pool outside the cache lock. Expensive loads (file I/O,
// network, decode) are thereby amortized into O(1) hits for the
// interactive path.
//
// Example:
//
//	c := cache.New(func(frame int) (*maskedit.LabelMask, error) {
//	    return source.GetMask(frame)
//	})
//	defer c.Close()
//
//	mask, ok := c.Get(42)
//	c.Prefetch([]int{43, 44, 45})
package cache

import (
	"sync"

	maskedit "github.com/Kenshy18/Mask-editor-proto-sub001"
	"github.com/Kenshy18/Mask-editor-proto-sub001/internal/lru"
	"github.com/Kenshy18/Mask-editor-proto-sub001/internal/pool"
)

// Default configuration.
const (
	// DefaultCapacity is the maximum number of cached frames.
	DefaultCapacity = 100

	// DefaultWorkers is the number of prefetch workers.
	DefaultWorkers = 2
)

// Loader fetches the value for a frame index. A nil error with a zero
// value is a valid result and is cached: it records "this frame has no
// mask" so the source is not asked again. A non-nil error leaves the
// key unset.
//
// Loaders run on the prefetch worker pool, never under the cache lock,
// so they may block on I/O without stalling cache reads.
type Loader[V any] func(frameIndex int) (V, error)

// Stats is a snapshot of cache performance counters.
type Stats struct {
	Size             int
	MaxSize          int
	Hits             uint64
	Misses           uint64
	HitRate          float64 // Hits/(Hits+Misses), 0 before any request
	PrefetchInFlight int
}

// Option configures a FrameCache.
type Option func(*options)

type options struct {
	capacity int
	workers  int
}

// WithCapacity sets the maximum number of cached frames.
// Non-positive values keep the default.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithWorkers sets the prefetch worker count.
// Non-positive values keep the default.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

type entry[V any] struct {
	value  V
	handle *lru.Handle[int]
}

// FrameCache is a bounded LRU store of per-frame values, keyed by frame
// index. Both Get and Set refresh recency; insertion past capacity
// evicts the least recently used frame.
//
// FrameCache is safe for concurrent use. A single mutex guards the map,
// the recency list and the counters; it is held only for bookkeeping,
// never across a load.
type FrameCache[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[int]*entry[V]
	recency  *lru.List[int]
	inflight map[int]struct{}

	// generation invalidates in-flight prefetch results: Clear
	// increments it, and a load that started under an older generation
	// is discarded instead of clobbering the cleared cache.
	generation uint64

	hits   uint64
	misses uint64

	loader Loader[V]
	pool   *pool.Pool
}

// New creates a FrameCache with the given loader. The loader may be
// nil, which turns Prefetch into a no-op; Get and Set still work.
func New[V any](loader Loader[V], opts ...Option) *FrameCache[V] {
	o := options{capacity: DefaultCapacity, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	return &FrameCache[V]{
		capacity: o.capacity,
		entries:  make(map[int]*entry[V]),
		recency:  lru.New[int](),
		inflight: make(map[int]struct{}),
		loader:   loader,
		pool:     pool.New(o.workers),
	}
}

// Get returns the cached value for a frame. A hit promotes the frame
// to most recently used; hit and miss counters are updated either way.
func (c *FrameCache[V]) Get(frameIndex int) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[frameIndex]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.recency.Promote(e.handle)
	return e.value, true
}

// Set stores a value for a frame. An existing key has its value and
// recency refreshed without any eviction; a genuinely new key may push
// the least recently used frame out.
func (c *FrameCache[V]) Set(frameIndex int, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(frameIndex, value)
}

func (c *FrameCache[V]) setLocked(frameIndex int, value V) {
	if e, ok := c.entries[frameIndex]; ok {
		e.value = value
		c.recency.Promote(e.handle)
		return
	}

	c.entries[frameIndex] = &entry[V]{
		value:  value,
		handle: c.recency.Touch(frameIndex),
	}
	if len(c.entries) > c.capacity {
		if victim, ok := c.recency.EvictBack(); ok {
			delete(c.entries, victim)
			maskedit.Logger().Debug("evicted frame from cache", "frame", victim)
		}
	}
}

// Prefetch asynchronously loads the given frames. Frames already
// cached or already being loaded are skipped, so concurrent requests
// for the same frame coalesce into one load. Results are installed via
// the normal Set path on completion; load errors are logged and leave
// the key unset.
func (c *FrameCache[V]) Prefetch(frameIndices []int) {
	if c.loader == nil {
		return
	}

	c.mu.Lock()
	gen := c.generation
	var toLoad []int
	for _, f := range frameIndices {
		if _, ok := c.entries[f]; ok {
			continue
		}
		if _, ok := c.inflight[f]; ok {
			continue
		}
		c.inflight[f] = struct{}{}
		toLoad = append(toLoad, f)
	}
	c.mu.Unlock()

	for _, f := range toLoad {
		f := f
		if !c.pool.Submit(func() { c.load(f, gen) }) {
			c.mu.Lock()
			delete(c.inflight, f)
			c.mu.Unlock()
		}
	}
}

// load runs on a pool worker: fetch outside the lock, then install
// under it, unless a Clear happened in the meantime.
func (c *FrameCache[V]) load(frameIndex int, gen uint64) {
	value, err := c.loader(frameIndex)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		maskedit.Logger().Debug("discarded stale prefetch result", "frame", frameIndex)
		return
	}
	delete(c.inflight, frameIndex)
	if err != nil {
		maskedit.Logger().Warn("prefetch load failed", "frame", frameIndex, "error", err)
		return
	}
	c.setLocked(frameIndex, value)
}

// Clear empties the store, resets the counters, and invalidates every
// outstanding prefetch. In-flight loads may still complete, but their
// results carry the old generation and are discarded on arrival.
func (c *FrameCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int]*entry[V])
	c.recency.Clear()
	c.inflight = make(map[int]struct{})
	c.hits = 0
	c.misses = 0
	c.generation++
	maskedit.Logger().Debug("cache cleared", "generation", c.generation)
}

// Stats returns a snapshot of the cache counters.
func (c *FrameCache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:             len(c.entries),
		MaxSize:          c.capacity,
		Hits:             c.hits,
		Misses:           c.misses,
		PrefetchInFlight: len(c.inflight),
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Len returns the number of cached frames.
func (c *FrameCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close shuts down the prefetch worker pool. The cache remains usable
// for Get and Set; further Prefetch calls are dropped.
func (c *FrameCache[V]) Close() {
	c.pool.Close()
}
