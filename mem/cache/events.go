package cache

import (
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

var (
	// HookPosAccess marks a processed trace access. Item is an AccessEvent.
	HookPosAccess = &hooking.HookPos{Name: "CacheAccess"}

	// HookPosEvict marks a block leaving a full set. Item is an EvictEvent.
	HookPosEvict = &hooking.HookPos{Name: "CacheEvict"}

	// HookPosPrefetch marks a prefetch candidate. Item is a PrefetchEvent.
	HookPosPrefetch = &hooking.HookPos{Name: "CachePrefetch"}
)

// AccessResult is the outcome of an access.
type AccessResult int

// Possible outcomes of an access.
const (
	Miss AccessResult = iota
	Hit
)

func (r AccessResult) String() string {
	if r == Hit {
		return "hit"
	}

	return "miss"
}

// AccessEvent describes one access as seen by the cache.
type AccessEvent struct {
	Op           mem.Operation
	Address      uint64
	BlockAddress uint64
	SetID        uint64
	Tag          uint64
	Result       AccessResult
}

// EvictEvent describes a block replaced by an insertion.
type EvictEvent struct {
	BlockAddress uint64
	SetID        uint64
	Tag          uint64
	ByPrefetch   bool
}

// PrefetchEvent describes a block considered by the prefetcher. Inserted is
// false if the block was already resident.
type PrefetchEvent struct {
	TriggerBlock uint64
	BlockAddress uint64
	SetID        uint64
	Tag          uint64
	Inserted     bool
}
