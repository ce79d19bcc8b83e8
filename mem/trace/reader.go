// Package trace reads and writes memory access traces. A trace has one
// access per line in the form "<R|W> 0x<hex address>" and ends with a line
// holding "#eof".
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/mem/mem"
)

// EOFMarker terminates a trace. Anything after it is ignored.
const EOFMarker = "#eof"

var (
	// ErrTraceFormat is wrapped by every FormatError.
	ErrTraceFormat = errors.New("malformed trace")

	// ErrTraceNotFound is returned when the trace file cannot be opened.
	ErrTraceNotFound = errors.New("trace source not found")
)

// A FormatError reports a line that is neither an access nor the terminator.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

// Unwrap makes errors.Is(err, ErrTraceFormat) true.
func (e *FormatError) Unwrap() error {
	return ErrTraceFormat
}

// Open opens a trace file for reading.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: trace file '%s' does not exist",
				ErrTraceNotFound, path)
		}

		return nil, fmt.Errorf("%w: %w", ErrTraceNotFound, err)
	}

	return f, nil
}

// A Reader returns the accesses of a trace one by one.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	done    bool
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next access. It returns io.EOF after the terminator or at
// the end of the input.
func (r *Reader) Next() (mem.Access, error) {
	if r.done {
		return mem.Access{}, io.EOF
	}

	if !r.scanner.Scan() {
		r.done = true

		err := r.scanner.Err()
		if errors.Is(err, bufio.ErrTooLong) {
			return mem.Access{}, &FormatError{
				Line:   r.line + 1,
				Reason: "line too long",
			}
		}

		if err != nil {
			return mem.Access{}, fmt.Errorf("reading trace: %w", err)
		}

		return mem.Access{}, io.EOF
	}

	r.line++
	text := strings.TrimSpace(r.scanner.Text())

	if text == EOFMarker {
		r.done = true
		return mem.Access{}, io.EOF
	}

	access, err := ParseLine(text)
	if err != nil {
		r.done = true

		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			formatErr.Line = r.line
		}

		return mem.Access{}, err
	}

	return access, nil
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

// ParseLine parses a single access line. The returned FormatError has no line
// number.
func ParseLine(text string) (mem.Access, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return mem.Access{}, &FormatError{
			Text:   text,
			Reason: "expected an operation and an address",
		}
	}

	op, err := mem.ParseOperation(fields[0])
	if err != nil {
		return mem.Access{}, &FormatError{Text: text, Reason: err.Error()}
	}

	address, err := parseAddress(fields[1])
	if err != nil {
		return mem.Access{}, &FormatError{Text: text, Reason: err.Error()}
	}

	return mem.Access{Op: op, Address: address}, nil
}

func parseAddress(s string) (uint64, error) {
	digits := s
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits = s[2:]
	}

	if digits == "" {
		return 0, fmt.Errorf("empty address %q", s)
	}

	address, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex address %q", s)
	}

	return address, nil
}

// FormatLine renders an access the way it appears in a trace.
func FormatLine(access mem.Access) string {
	return fmt.Sprintf("%s 0x%08x", access.Op, access.Address)
}
