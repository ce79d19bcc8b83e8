package tagging

// TagArray keeps track of which blocks are resident in each set of a cache.
type TagArray interface {
	// Lookup returns the block holding tag in set setID, if resident.
	Lookup(setID int, tag uint64) (Block, bool)

	// Insert places tag into set setID as the newest block. If the set is
	// full, the victim is returned together with true.
	Insert(setID int, tag uint64) (victim Block, evicted bool)

	// GetSet returns the set with the given ID.
	GetSet(setID int) *Set

	// NumSets returns the number of sets.
	NumSets() int

	// NumWays returns the number of blocks in each set.
	NumWays() int

	// Reset removes all the blocks.
	Reset()
}

// NewTagArray creates an empty tag array. Sets and their blocks are allocated
// when they are first filled, so the footprint follows the resident blocks
// rather than the capacity.
func NewTagArray(
	numSets int,
	numWays int,
	victimFinder VictimFinder,
) TagArray {
	t := &tagArrayImpl{
		numSets:      numSets,
		numWays:      numWays,
		victimFinder: victimFinder,
	}

	t.Reset()

	return t
}

// A Block is one way of a set.
type Block struct {
	Tag     uint64
	SetID   int
	WayID   int
	IsValid bool
}

// A Set is a group of blocks that a block address can be stored at. Blocks
// grows up to the number of ways. FIFOQueue holds way IDs ordered by
// insertion, oldest first.
type Set struct {
	Blocks    []Block
	FIFOQueue []int
}

type tagArrayImpl struct {
	numSets      int
	numWays      int
	sets         map[int]*Set
	victimFinder VictimFinder
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

// GetSet returns an empty set if nothing has been inserted into setID.
func (t *tagArrayImpl) GetSet(setID int) *Set {
	if set, ok := t.sets[setID]; ok {
		return set
	}

	return &Set{}
}

// Lookup does not change the insertion order.
func (t *tagArrayImpl) Lookup(setID int, tag uint64) (Block, bool) {
	set, ok := t.sets[setID]
	if !ok {
		return Block{}, false
	}

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

func (t *tagArrayImpl) Insert(setID int, tag uint64) (Block, bool) {
	set, ok := t.sets[setID]
	if !ok {
		set = &Set{}
		t.sets[setID] = set
	}

	if len(set.Blocks) < t.numWays {
		wayID := len(set.Blocks)
		set.Blocks = append(set.Blocks, Block{
			Tag:     tag,
			SetID:   setID,
			WayID:   wayID,
			IsValid: true,
		})
		set.FIFOQueue = append(set.FIFOQueue, wayID)

		return Block{SetID: setID, WayID: wayID}, false
	}

	victim := t.victimFinder.FindVictim(set)
	evicted := victim.IsValid

	set.Blocks[victim.WayID] = Block{
		Tag:     tag,
		SetID:   setID,
		WayID:   victim.WayID,
		IsValid: true,
	}
	set.moveToBack(victim.WayID)

	return victim, evicted
}

// Reset drops all the blocks.
func (t *tagArrayImpl) Reset() {
	t.sets = make(map[int]*Set)
}

func (s *Set) moveToBack(wayID int) {
	last := len(s.FIFOQueue) - 1
	for i, w := range s.FIFOQueue {
		if w == wayID {
			copy(s.FIFOQueue[i:], s.FIFOQueue[i+1:])
			s.FIFOQueue[last] = wayID

			return
		}
	}
}

// ResidentTags lists the valid tags of the set, oldest first.
func (s *Set) ResidentTags() []uint64 {
	tags := make([]uint64, 0, len(s.Blocks))

	for _, wayID := range s.FIFOQueue {
		block := s.Blocks[wayID]
		if block.IsValid {
			tags = append(tags, block.Tag)
		}
	}

	return tags
}
