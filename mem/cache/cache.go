// Package cache models a set-associative cache with FIFO replacement and a
// next-line prefetcher. Only residency is modeled; there is no data and no
// timing.
package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/mem"
	"github.com/sarchlab/cachesim/sim/hooking"
)

// Cache counts hits and misses of the accesses that it is given. It is not
// safe for concurrent use. Accesses must be applied in trace order.
type Cache struct {
	hooking.HookableBase

	geometry   Geometry
	tags       tagging.TagArray
	prefetcher nextLinePrefetcher

	hits   uint64
	misses uint64
}

// Geometry returns the shape of the cache.
func (c *Cache) Geometry() Geometry {
	return c.geometry
}

// PrefetchSize returns the number of blocks fetched after each miss.
func (c *Cache) PrefetchSize() uint64 {
	return c.prefetcher.depth
}

// Access looks up the block that holds addr. On a miss, the block is
// inserted, followed by the prefetched blocks. Reads and writes behave the
// same.
func (c *Cache) Access(op mem.Operation, addr uint64) AccessResult {
	blockAddr, setID, tag := c.geometry.Decompose(addr)

	result := Miss
	if _, found := c.tags.Lookup(int(setID), tag); found {
		result = Hit
		c.hits++
	} else {
		c.misses++
	}

	if c.HasHooks() {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosAccess,
			Item: AccessEvent{
				Op:           op,
				Address:      addr,
				BlockAddress: blockAddr,
				SetID:        setID,
				Tag:          tag,
				Result:       result,
			},
		})
	}

	if result == Hit {
		return Hit
	}

	c.insert(setID, tag, false)
	c.prefetcher.prefetch(c, blockAddr)

	return Miss
}

// Results returns the number of hits and misses so far.
func (c *Cache) Results() (hits, misses uint64) {
	return c.hits, c.misses
}

// IsResident tells if the block that holds addr is in the cache. It does not
// count as an access.
func (c *Cache) IsResident(addr uint64) bool {
	return c.isBlockResident(addr / c.geometry.BlockSize)
}

func (c *Cache) isBlockResident(blockAddr uint64) bool {
	setID, tag := c.geometry.DecomposeBlock(blockAddr)
	_, found := c.tags.Lookup(int(setID), tag)

	return found
}

// ResidentBlocks lists the block addresses held by a set, oldest first.
func (c *Cache) ResidentBlocks(setID uint64) []uint64 {
	tags := c.tags.GetSet(int(setID)).ResidentTags()

	blocks := make([]uint64, len(tags))
	for i, tag := range tags {
		blocks[i] = c.geometry.BlockAddress(setID, tag)
	}

	return blocks
}

// insert never updates the hit and miss counters.
func (c *Cache) insert(setID, tag uint64, byPrefetch bool) {
	victim, evicted := c.tags.Insert(int(setID), tag)
	if !evicted || !c.HasHooks() {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosEvict,
		Item: EvictEvent{
			BlockAddress: c.geometry.BlockAddress(setID, victim.Tag),
			SetID:        setID,
			Tag:          victim.Tag,
			ByPrefetch:   byPrefetch,
		},
	})
}
