package dictionary

import "github.com/rajames440/starforth/internal/fixedmath"

// DefaultCacheCapacity is the hot-words cache's default slot count
// (spec.md §3.6).
const DefaultCacheCapacity = 64

// DefaultPromotionThreshold is the default execution-heat threshold above
// which a bucket-hit entry is promoted into the cache (spec.md §4.4).
const DefaultPromotionThreshold fixedmath.Q = 10 << 16

// Clock supplies monotonic nanosecond timestamps, routed through
// HostServices rather than calling time.Now directly (spec.md §4.2).
type Clock interface {
	MonotonicNS() int64
}

// HotCache is the fixed-capacity dictionary lookup accelerator (spec.md
// §3.6, §4.4): a small slot array of entry pointers plus an LRU cursor and
// the Bayesian telemetry accumulators for cache hits and bucket hits.
type HotCache struct {
	capacity           int
	slots              []*Entry
	cursor             int
	promotionThreshold fixedmath.Q

	CacheStats  DistStats
	BucketStats DistStats

	TotalLookups   uint64
	CacheHits      uint64
	BucketHits     uint64
	Misses         uint64
	Promotions     uint64
	Evictions      uint64
	BucketReorders uint64
}

// NewHotCache constructs a HotCache with the given slot capacity and
// promotion threshold.
func NewHotCache(capacity int, promotionThreshold fixedmath.Q) *HotCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if promotionThreshold == 0 {
		promotionThreshold = DefaultPromotionThreshold
	}
	return &HotCache{
		capacity:           capacity,
		slots:              make([]*Entry, 0, capacity),
		promotionThreshold: promotionThreshold,
	}
}

// Slots returns the live cache contents (newest-promotion-first is not
// guaranteed; order reflects promotion/eviction history).
func (hc *HotCache) Slots() []*Entry {
	out := make([]*Entry, len(hc.slots))
	copy(out, hc.slots)
	return out
}

func (hc *HotCache) contains(e *Entry) bool {
	for _, s := range hc.slots {
		if s == e {
			return true
		}
	}
	return false
}

// promote inserts e into the cache. A duplicate promotion is a no-op. If
// the cache has free capacity, e is appended and Promotions increments;
// otherwise the slot at the LRU cursor is replaced, the cursor advances
// modulo capacity, and Evictions increments (spec.md §4.4 — note
// Promotions is only incremented on the append path, matching the spec
// text precisely).
func (hc *HotCache) promote(e *Entry) {
	if hc.contains(e) {
		return
	}
	if len(hc.slots) < hc.capacity {
		hc.slots = append(hc.slots, e)
		hc.Promotions++
		return
	}
	hc.slots[hc.cursor] = e
	hc.cursor = (hc.cursor + 1) % hc.capacity
	hc.Evictions++
}

// cacheFind scans the cache array linearly for name, skipping smudged
// entries.
func (hc *HotCache) cacheFind(name string) *Entry {
	for _, e := range hc.slots {
		if e != nil && !e.Flags.Has(Smudged) && e.Name == name {
			return e
		}
	}
	return nil
}
