// Package mem defines the vocabulary shared by the memory models: the kinds
// of accesses and common size units.
package mem

import "fmt"

// Size units in bytes.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// Operation is the kind of a memory access.
type Operation int

// Operations that can appear in a memory trace.
const (
	Read Operation = iota
	Write
)

// String returns the single-letter form used in traces.
func (o Operation) String() string {
	switch o {
	case Read:
		return "R"
	case Write:
		return "W"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// ParseOperation converts the trace form of an operation ("R" or "W").
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "R":
		return Read, nil
	case "W":
		return Write, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// An Access is a single memory operation on a byte address.
type Access struct {
	Op      Operation
	Address uint64
}
