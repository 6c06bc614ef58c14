package isa

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/lutpim/lut"
)

var (
	// ErrMalformed means a TAC line has too few operands, or the wrong
	// number, for its operator.
	ErrMalformed = errors.New("malformed TAC instruction")

	// ErrUnsupported means the TAC operator has no lowering.
	ErrUnsupported = errors.New("unsupported TAC operator")
)

// SkipReason tells why a TAC line was not lowered.
type SkipReason int

const (
	Malformed SkipReason = iota
	Unsupported
)

func (r SkipReason) String() string {
	if r == Unsupported {
		return "unsupported"
	}

	return "malformed"
}

// MarshalText renders the reason by name in reports.
func (r SkipReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r SkipReason) sentinel() error {
	if r == Unsupported {
		return ErrUnsupported
	}

	return ErrMalformed
}

// Skip records a TAC line that produced no instructions.
type Skip struct {
	Line   int        `json:"line" yaml:"line"`
	TAC    string     `json:"tac" yaml:"tac"`
	Reason SkipReason `json:"reason" yaml:"reason"`
	Detail string     `json:"detail" yaml:"detail"`
}

func (s Skip) String() string {
	return fmt.Sprintf("line %d: %s: %s (%q)", s.Line, s.Reason, s.Detail, s.TAC)
}

// SkipError is the error returned for a skipped TAC line. It unwraps to
// ErrMalformed or ErrUnsupported.
type SkipError struct {
	Skip Skip
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip TAC %s", e.Skip)
}

func (e *SkipError) Unwrap() error {
	return e.Skip.Reason.sentinel()
}

// CMP names the comparison LUT program in an OpSet.
const CMP = "CMP"

// OpSet holds the LUT programs a run has activated.
type OpSet map[string]struct{}

// Add marks an operation as used.
func (s OpSet) Add(name string) {
	s[name] = struct{}{}
}

// Has tells whether an operation was used.
func (s OpSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted lists the used operations in name order.
func (s OpSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Clone returns an independent copy of the set.
func (s OpSet) Clone() OpSet {
	c := make(OpSet, len(s))
	for name := range s {
		c.Add(name)
	}

	return c
}

// progOps is the set entry each LUT programming mnemonic marks.
var progOps = map[string]string{
	LUTProgMult: lut.OpMultiply,
	LUTProgAdd:  lut.OpAdd,
	LUTProgCmp:  CMP,
}

// ProgramOf returns the OpSet name programmed by a LUT_PROG_* mnemonic.
func ProgramOf(mnemonic string) (string, bool) {
	name, ok := progOps[mnemonic]
	return name, ok
}
