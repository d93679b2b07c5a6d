// Package solver implements the regret table, frozen/random players, the
// external-sampling CFR learner, and the textual checkpoint format. It is
// generic over the game's action alphabet via
// github.com/ehrlich-b/cfrsolver/pkg/game.Game[A].
package solver

import (
	"math"
	"math/rand"
	"sync"
)

// initialRegret is the optimistic seed value every action's regret starts
// at, biasing early exploration toward uniform play rather than starting
// from zero.
const initialRegret = 10.0

// shardCount partitions the table's infosets to shrink per-update lock
// contention under many parallel workers, the same sharded-map structure
// used by the lox pokerforbots regret table (64 shards, FNV-1a routing).
const shardCount = 64

type regretEntry struct {
	mu      sync.Mutex
	regrets []float64
}

type regretShard struct {
	mu      sync.RWMutex
	entries map[string]*regretEntry
}

// RegretTable is the concurrent mapping from information-set id to a
// vector of per-action cumulative positive regrets. It is owned by exactly
// one Learner and shared, read and written, by every parallel training
// worker.
type RegretTable struct {
	shards [shardCount]*regretShard
}

// NewRegretTable returns an empty table ready for concurrent use.
func NewRegretTable() *RegretTable {
	t := &RegretTable{}
	for i := range t.shards {
		t.shards[i] = &regretShard{entries: make(map[string]*regretEntry)}
	}
	return t
}

func fnv1a(s string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

func (t *RegretTable) shardFor(key string) *regretShard {
	return t.shards[fnv1a(key)%shardCount]
}

// getOrCreate returns the entry for infoset, atomically creating it with n
// actions seeded at initialRegret on first observation. Double-checked
// locking keeps the common case (entry already exists) on the cheap
// read-lock path.
func (t *RegretTable) getOrCreate(infoset string, n int) *regretEntry {
	sh := t.shardFor(infoset)

	sh.mu.RLock()
	e, ok := sh.entries[infoset]
	sh.mu.RUnlock()
	if ok {
		return e
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok = sh.entries[infoset]; ok {
		return e
	}
	e = &regretEntry{regrets: make([]float64, n)}
	for i := range e.regrets {
		e.regrets[i] = initialRegret
	}
	sh.entries[infoset] = e
	return e
}

// GetStrategy upserts infoset if absent, then returns the regret-matching
// distribution over actions: positive regrets normalised to sum to one,
// falling back to uniform when no regret is positive.
func (t *RegretTable) GetStrategy(infoset string, actionCount int) []float64 {
	e := t.getOrCreate(infoset, actionCount)
	e.mu.Lock()
	defer e.mu.Unlock()

	strat := make([]float64, len(e.regrets))
	sum := 0.0
	for i, r := range e.regrets {
		if r > 0 {
			strat[i] = r
			sum += r
		}
	}
	if sum > 0 {
		for i := range strat {
			strat[i] /= sum
		}
		return strat
	}
	uniform := 1.0 / float64(len(strat))
	for i := range strat {
		strat[i] = uniform
	}
	return strat
}

// UpdateRegrets adds deltas[i] to the regret for action i at infoset,
// clamping every entry to be non-negative afterward. NaN/Inf deltas
// indicate a learner bug and panic rather than silently corrupting the
// table.
func (t *RegretTable) UpdateRegrets(infoset string, deltas []float64) {
	e := t.getOrCreate(infoset, len(deltas))
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, d := range deltas {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			panic("solver: NaN/Inf regret delta")
		}
		v := e.regrets[i] + d
		if v < 0 {
			v = 0
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			panic("solver: NaN/Inf regret after update")
		}
		e.regrets[i] = v
	}
}

// Sample draws one action index from the current strategy at infoset,
// given a uniform draw u in [0, 1): the first action whose cumulative
// strategy mass is >= u, falling through to the last action to absorb
// floating-point rounding.
func (t *RegretTable) Sample(infoset string, actionCount int, u float64) int {
	strat := t.GetStrategy(infoset, actionCount)
	cum := 0.0
	for i, p := range strat {
		cum += p
		if cum >= u {
			return i
		}
	}
	return actionCount - 1
}

// GetMove is the rand.Rand-driven convenience wrapper around Sample.
func (t *RegretTable) GetMove(rng *rand.Rand, infoset string, actionCount int) int {
	return t.Sample(infoset, actionCount, rng.Float64())
}

// Size returns the number of information sets tracked.
func (t *RegretTable) Size() int {
	total := 0
	for _, sh := range t.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}

// snapshot copies every infoset's regret vector into a plain map, safe to
// hand to a frozen player or a checkpoint writer without further
// synchronisation.
func (t *RegretTable) snapshot() map[string][]float64 {
	out := make(map[string][]float64)
	for _, sh := range t.shards {
		sh.mu.RLock()
		for k, e := range sh.entries {
			e.mu.Lock()
			out[k] = append([]float64(nil), e.regrets...)
			e.mu.Unlock()
		}
		sh.mu.RUnlock()
	}
	return out
}

// restore replaces the table's contents with data, used by checkpoint
// loading. Any prior contents are discarded.
func (t *RegretTable) restore(data map[string][]float64) {
	for i := range t.shards {
		t.shards[i] = &regretShard{entries: make(map[string]*regretEntry)}
	}
	for k, v := range data {
		sh := t.shardFor(k)
		sh.entries[k] = &regretEntry{regrets: append([]float64(nil), v...)}
	}
}
