package tagging

// A VictimFinder decides which block should be replaced when a new block is
// inserted into a set.
type VictimFinder interface {
	FindVictim(set *Set) Block
}

// FIFOVictimFinder replaces the block that was inserted earliest. Hits do not
// extend a block's lifetime.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return new(FIFOVictimFinder)
}

// FindVictim returns an empty block if there is one, or the oldest block.
func (e *FIFOVictimFinder) FindVictim(set *Set) Block {
	for _, wayID := range set.FIFOQueue {
		block := set.Blocks[wayID]
		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.FIFOQueue[0]]
}
