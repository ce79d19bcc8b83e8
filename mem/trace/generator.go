package trace

import (
	"bufio"
	"io"
	"math/rand"

	"github.com/sarchlab/cachesim/mem/mem"
)

// Generate writes a trace of numAccesses uniformly random 32-bit addresses,
// each read or written with equal probability, followed by the terminator.
func Generate(w io.Writer, numAccesses int, rng *rand.Rand) error {
	bw := bufio.NewWriter(w)

	for i := 0; i < numAccesses; i++ {
		access := mem.Access{
			Op:      mem.Operation(rng.Intn(2)),
			Address: uint64(rng.Uint32()),
		}

		if _, err := io.WriteString(bw, FormatLine(access)+"\n"); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(bw, EOFMarker+"\n"); err != nil {
		return err
	}

	return bw.Flush()
}
