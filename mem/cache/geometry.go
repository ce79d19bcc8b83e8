package cache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConfig is returned when a cache cannot be built from the given
// parameters.
var ErrInvalidConfig = errors.New("invalid cache configuration")

// AssociativityKind tells how blocks are grouped into sets.
type AssociativityKind int

// Supported kinds of associativity.
const (
	DirectMapped AssociativityKind = iota
	SetAssociative
	FullyAssociative
)

// Associativity describes the placement policy of a cache. Ways is only
// meaningful for SetAssociative.
type Associativity struct {
	Kind AssociativityKind
	Ways uint64
}

// ParseAssociativity accepts "direct", "full" (or "assoc") and "set:N" (or
// "assoc:N").
func ParseAssociativity(desc string) (Associativity, error) {
	switch desc {
	case "direct":
		return Associativity{Kind: DirectMapped}, nil
	case "full", "assoc":
		return Associativity{Kind: FullyAssociative}, nil
	}

	for _, prefix := range []string{"set:", "assoc:"} {
		numStr, found := strings.CutPrefix(desc, prefix)
		if !found {
			continue
		}

		ways, err := strconv.ParseUint(numStr, 10, 64)
		if err != nil || ways == 0 {
			return Associativity{}, fmt.Errorf(
				"%w: invalid number of ways in %q", ErrInvalidConfig, desc)
		}

		return Associativity{Kind: SetAssociative, Ways: ways}, nil
	}

	return Associativity{}, fmt.Errorf(
		"%w: invalid associativity type %q", ErrInvalidConfig, desc)
}

func (a Associativity) String() string {
	switch a.Kind {
	case DirectMapped:
		return "direct"
	case FullyAssociative:
		return "full"
	case SetAssociative:
		return fmt.Sprintf("set:%d", a.Ways)
	default:
		return fmt.Sprintf("Associativity(%d)", int(a.Kind))
	}
}

// Geometry is the shape of a cache. It is fixed once the cache is built.
type Geometry struct {
	CacheSize     uint64
	BlockSize     uint64
	Associativity Associativity
	NumSets       uint64
	Ways          uint64
}

// ResolveGeometry derives the number of sets and ways.
func ResolveGeometry(
	cacheSize, blockSize uint64,
	assoc Associativity,
) (Geometry, error) {
	if !isPowerOfTwo(cacheSize) || !isPowerOfTwo(blockSize) {
		return Geometry{}, fmt.Errorf(
			"%w: cache size and block size must be powers of 2, got %d and %d",
			ErrInvalidConfig, cacheSize, blockSize)
	}

	if cacheSize%blockSize != 0 {
		return Geometry{}, fmt.Errorf(
			"%w: cache size %d is smaller than block size %d",
			ErrInvalidConfig, cacheSize, blockSize)
	}

	numBlocks := cacheSize / blockSize
	g := Geometry{
		CacheSize:     cacheSize,
		BlockSize:     blockSize,
		Associativity: assoc,
	}

	switch assoc.Kind {
	case DirectMapped:
		g.Ways = 1
		g.NumSets = numBlocks
	case FullyAssociative:
		g.Ways = numBlocks
		g.NumSets = 1
	case SetAssociative:
		if assoc.Ways == 0 || numBlocks%assoc.Ways != 0 {
			return Geometry{}, fmt.Errorf(
				"%w: %d blocks cannot be divided into %d-way sets",
				ErrInvalidConfig, numBlocks, assoc.Ways)
		}

		g.Ways = assoc.Ways
		g.NumSets = numBlocks / assoc.Ways
	default:
		return Geometry{}, fmt.Errorf(
			"%w: unknown associativity %s", ErrInvalidConfig, assoc)
	}

	return g, nil
}

// NumBlocks returns the number of blocks the cache can hold.
func (g Geometry) NumBlocks() uint64 {
	return g.NumSets * g.Ways
}

// Decompose splits a byte address into its block address, set index and tag.
func (g Geometry) Decompose(addr uint64) (blockAddr, setID, tag uint64) {
	blockAddr = addr / g.BlockSize
	setID, tag = g.DecomposeBlock(blockAddr)

	return blockAddr, setID, tag
}

// DecomposeBlock splits a block address into its set index and tag.
func (g Geometry) DecomposeBlock(blockAddr uint64) (setID, tag uint64) {
	return blockAddr % g.NumSets, blockAddr / g.NumSets
}

// BlockAddress is the inverse of DecomposeBlock.
func (g Geometry) BlockAddress(setID, tag uint64) uint64 {
	return tag*g.NumSets + setID
}

func isPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}
