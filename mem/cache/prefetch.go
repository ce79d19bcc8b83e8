package cache

import "github.com/sarchlab/cachesim/sim/hooking"

// nextLinePrefetcher brings in the blocks that follow a missed block.
type nextLinePrefetcher struct {
	depth uint64
}

// prefetch works on block addresses, not byte addresses. Prefetched blocks
// are not counted and do not trigger further prefetching. Prefetching stops
// at the end of the address space instead of wrapping around to block 0.
func (p nextLinePrefetcher) prefetch(c *Cache, missedBlock uint64) {
	for i := uint64(1); i <= p.depth; i++ {
		blockAddr := missedBlock + i
		if blockAddr < missedBlock {
			return
		}
		setID, tag := c.geometry.DecomposeBlock(blockAddr)

		_, resident := c.tags.Lookup(int(setID), tag)
		if !resident {
			c.insert(setID, tag, true)
		}

		if c.HasHooks() {
			c.InvokeHook(hooking.HookCtx{
				Domain: c,
				Pos:    HookPosPrefetch,
				Item: PrefetchEvent{
					TriggerBlock: missedBlock,
					BlockAddress: blockAddr,
					SetID:        setID,
					Tag:          tag,
					Inserted:     !resident,
				},
			})
		}
	}
}
