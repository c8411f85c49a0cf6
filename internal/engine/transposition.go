package engine

import (
	"encoding/binary"
	"math/big"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

// TranspositionCache is the Evaluator's LRU-bounded memoization table,
// keyed logically on (position key, remaining depth, alpha, beta) per
// spec.md §4.3 option (a) — see SPEC_FULL.md §4.3 for why this
// implementation resolves the cache-keying ambiguity that way.
//
// Backed by ristretto, a bounded cache with TinyLFU admission and
// sampled-LFU eviction (not strict LRU), already present
// (transitively, via BadgerDB) in the teacher's dependency graph. Since
// this cache memoizes a pure function (Evaluator.computeNode), its
// approximate/async eviction can only affect performance, never
// correctness: a cache miss simply recomputes the identical result.
type TranspositionCache struct {
	cache    *ristretto.Cache[uint64, Result]
	capacity int
}

// NewTranspositionCache builds a cache with capacity N (spec.md's
// Configuration.CacheCapacity). Capacity 0 disables caching entirely
// (every lookup is a miss, every store a no-op).
func NewTranspositionCache(capacity int) *TranspositionCache {
	t := &TranspositionCache{capacity: capacity}
	if capacity <= 0 {
		return t
	}
	numCounters := int64(capacity) * 10
	if numCounters < 100 {
		numCounters = 100
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, Result]{
		NumCounters: numCounters,
		MaxCost:     int64(capacity),
		BufferItems: 64,
		// Each entry costs exactly 1, so MaxCost is an entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		// Capacity was validated by Configuration; a construction error
		// here is a library misuse bug, not a recoverable condition.
		panic("engine: failed to build transposition cache: " + err.Error())
	}
	t.cache = cache
	return t
}

// Get looks up a previously stored result. A hit counts toward the
// entry's access frequency in ristretto's policy; there is no recency
// ordering.
func (t *TranspositionCache) Get(key uint64) (Result, bool) {
	if t.cache == nil {
		return Result{}, false
	}
	return t.cache.Get(key)
}

// Set offers a result to the cache at a cost of 1. The write is buffered
// asynchronously; when the cache is full, ristretto's admission policy
// either evicts a low-frequency entry or drops the new one. Eviction is
// not least-recently-used.
func (t *TranspositionCache) Set(key uint64, v Result) {
	if t.cache == nil {
		return
	}
	t.cache.Set(key, v, 1)
}

// Clear empties the cache. Required whenever Configuration changes
// (board size, K, P) per spec.md §4.3's cache-eviction rules.
func (t *TranspositionCache) Clear() {
	if t.cache != nil {
		t.cache.Clear()
	}
}

// Close releases the cache's background goroutines. Safe to call on a
// capacity-0 (disabled) cache.
func (t *TranspositionCache) Close() {
	if t.cache != nil {
		t.cache.Close()
	}
}

// cacheKey hashes the logical (position key, remaining depth, alpha, beta)
// tuple into a single uint64 for ristretto, via xxhash — already present
// in the teacher's dependency graph alongside BadgerDB, and the same
// hash/probe idiom the teacher's own Zobrist-keyed transposition table
// uses (internal/engine/transposition.go in hailam-chessplay).
func cacheKey(positionKey *big.Int, depth, alpha, beta int) uint64 {
	kb := positionKey.Bytes()
	buf := make([]byte, len(kb)+24)
	copy(buf, kb)
	binary.LittleEndian.PutUint64(buf[len(kb):], uint64(int64(depth)))
	binary.LittleEndian.PutUint64(buf[len(kb)+8:], uint64(int64(alpha)))
	binary.LittleEndian.PutUint64(buf[len(kb)+16:], uint64(int64(beta)))
	return xxhash.Sum64(buf)
}
