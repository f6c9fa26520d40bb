package dictionary

import (
	"errors"
	"sync"
)

// ErrForgetPastFence is returned by Forget when the requested target lies
// before the dictionary's boot fence (the primitives installed at VM
// construction time are never forgettable).
var ErrForgetPastFence = errors.New("dictionary: cannot FORGET past the boot fence")

// Dictionary is the append-only, newest-to-oldest linked dictionary plus
// an optional hot-words cache (spec.md §3.4, §3.6, §4.4). Structure
// mutation (Create/Forget/the guardrail walk) is guarded by a mutex;
// lookups and execution-heat increments are not, per spec.md §5 ("data
// that is stable once written").
type Dictionary struct {
	mu sync.Mutex

	last       *Entry
	nextWordID uint32
	bootFence  *Entry

	// entries is an append-only vector parallel to the linked list, indexed
	// by WordID, giving O(1) resolution from a compiled threaded-code cell
	// (a WordID) back to its Entry (spec.md §9 "Threaded code without
	// function pointers as data": "store dictionary-entry indices into an
	// owned table of entries").
	entries []*Entry

	Cache *HotCache // nil disables the hot cache (spec.md §4.4 step 1)
}

// New constructs an empty Dictionary. Pass a non-nil cache to enable the
// hot-words cache; pass nil to run with plain linear bucket scans.
func New(cache *HotCache) *Dictionary {
	return &Dictionary{Cache: cache}
}

// Last returns the current head of the dictionary chain, or nil: the most
// recently created entry, unless BucketReorder has since relinked the chain
// with the hottest entry at the head.
func (d *Dictionary) Last() *Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// SetBootFence freezes the current dictionary head as the floor FORGET
// may never rewind past (spec.md §3.4 "destroyed only by FORGET back to a
// fence set at system boot").
func (d *Dictionary) SetBootFence() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bootFence = d.last
}

// Create appends a new, immediately-visible entry (used for primitives and
// for CREATE once naming is resolved).
func (d *Dictionary) Create(name string, fn WordFunc) *Entry {
	return d.create(name, fn, 0)
}

// CreateSmudged appends a new entry with the Smudged flag set, as `:` does
// at the start of a colon definition (spec.md §4.5): invisible to lookup
// until ClearSmudge is called.
func (d *Dictionary) CreateSmudged(name string) *Entry {
	return d.create(name, nil, Smudged)
}

func (d *Dictionary) create(name string, fn WordFunc, flags Flags) *Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := &Entry{
		Link:   d.last,
		Flags:  flags,
		Name:   name,
		WordID: d.nextWordID,
		Func:   fn,
	}
	d.nextWordID++
	d.last = e
	d.entries = append(d.entries, e)
	return e
}

// ByID resolves a WordID back to its Entry in O(1), used by the inner
// interpreter to dispatch a compiled threaded-code cell. It returns nil
// for an out-of-range id (e.g. one belonging to a word FORGET has since
// removed).
func (d *Dictionary) ByID(id uint32) *Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(id) >= len(d.entries) {
		return nil
	}
	return d.entries[id]
}

// Forget rewinds the dictionary head to target, which must be reachable
// from the current head without crossing the boot fence. Passing the fence
// entry itself forgets everything created after it; a nil target is only
// accepted when no boot fence has been set, and then empties the dictionary.
func (d *Dictionary) Forget(target *Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if target == d.bootFence {
		d.last = target
		d.truncateEntriesLocked(target)
		return nil
	}
	for e := d.last; e != nil && e != d.bootFence; e = e.Link {
		if e == target {
			d.last = target
			d.truncateEntriesLocked(target)
			return nil
		}
	}
	return ErrForgetPastFence
}

// truncateEntriesLocked drops the WordID vector back to just past target
// (nil drops everything) and rewinds the WordID counter to match. Since
// WordIDs are assigned in creation order and creation order matches append
// order to entries, this keeps ByID from ever resolving a forgotten word
// and keeps later entries indexed by their WordID.
func (d *Dictionary) truncateEntriesLocked(target *Entry) {
	if target == nil {
		d.entries = d.entries[:0]
	} else {
		d.entries = d.entries[:target.WordID+1]
	}
	d.nextWordID = uint32(len(d.entries))
}

// Find performs dictionary lookup (spec.md §4.4's `find(name, bucket[])`):
// cache-first when a HotCache is installed, otherwise a direct bucket
// scan. With a HotCache installed, a cache or bucket hit records execution
// heat on the entry (spec.md §2: a probe "increments execution heat and
// records latency samples"), so promotion can key off lookup frequency
// alone, without the word ever being called; the cache-disabled scan records
// no heat and keeps no counters. clock may be nil, in which case latency
// telemetry is skipped but heat and hit/miss counters still advance.
func (d *Dictionary) Find(name string, clock Clock) *Entry {
	if d.Cache == nil {
		return d.scanBucket(name)
	}

	hc := d.Cache
	hc.TotalLookups++

	var start int64
	haveClock := clock != nil
	if haveClock {
		start = clock.MonotonicNS()
	}

	if e := hc.cacheFind(name); e != nil {
		hc.CacheHits++
		var now int64
		if haveClock {
			now = clock.MonotonicNS()
			hc.CacheStats.Observe(now - start)
		}
		e.RecordExecution(now)
		return e
	}

	for e := d.last; e != nil; e = e.Link {
		if e.Flags.Has(Smudged) {
			continue
		}
		if e.Name != name {
			continue
		}
		hc.BucketHits++
		var now int64
		if haveClock {
			now = clock.MonotonicNS()
			hc.BucketStats.Observe(now - start)
		}
		e.RecordExecution(now)
		if e.ExecutionHeat > hc.promotionThreshold {
			hc.promote(e)
		}
		return e
	}

	hc.Misses++
	return nil
}

// scanBucket is the cache-disabled lookup path: newest-to-oldest,
// name_len/last-byte/full-bytes comparison collapses in Go to a direct
// string comparison, which is equivalent and clearer.
func (d *Dictionary) scanBucket(name string) *Entry {
	for e := d.last; e != nil; e = e.Link {
		if e.Flags.Has(Smudged) {
			continue
		}
		if e.Name == name {
			return e
		}
	}
	return nil
}

// BucketReorder sorts the dictionary chain descending by ExecutionHeat
// using a stable bubble-style pass, then relinks it (spec.md §4.4). Every
// live entry is still visited exactly once walking from the head, so a name
// defined once is still found; what changes is lookup order, and thus how
// quickly hot words are found by a disabled-cache bucket scan. When a name
// is defined more than once, lookup afterwards finds the hotter definition
// rather than the newest one.
func (d *Dictionary) BucketReorder() {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.entriesLocked()
	n := len(entries)
	for i := 0; i < n; i++ {
		for j := 0; j < n-1-i; j++ {
			if entries[j].ExecutionHeat < entries[j+1].ExecutionHeat {
				entries[j], entries[j+1] = entries[j+1], entries[j]
			}
		}
	}
	for i := range entries {
		if i+1 < n {
			entries[i].Link = entries[i+1]
		} else {
			entries[i].Link = nil
		}
	}
	if n > 0 {
		d.last = entries[0]
	}
	if d.Cache != nil {
		d.Cache.BucketReorders++
	}
}

// Snapshot returns a defensive copy of every live entry, indexed by
// WordID. Used by read-only telemetry walks (internal/telemetry's
// heartbeat capture) that must not race Create/Forget.
func (d *Dictionary) Snapshot() []*Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Dictionary) entriesLocked() []*Entry {
	var out []*Entry
	for e := d.last; e != nil; e = e.Link {
		out = append(out, e)
	}
	return out
}

// Reachable implements the ENTROPY@/ENTROPY! guardrail (spec.md §4.4): a
// pointer may only be dereferenced if it is reachable by walking the
// dictionary from head to null. The walk is protected by the dictionary
// mutex, per spec.md.
func (d *Dictionary) Reachable(e *Entry) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := d.last; c != nil; c = c.Link {
		if c == e {
			return true
		}
	}
	return false
}
