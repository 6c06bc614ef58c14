package lut

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrIncomplete means a table does not cover every input pattern once.
	ErrIncomplete = errors.New("LUT table is incomplete")

	// ErrIncorrect means an entry disagrees with the table's operation.
	ErrIncorrect = errors.New("LUT entry is incorrect")

	// ErrUnknownTable is returned when a lookup names a table that does not
	// exist in the catalog.
	ErrUnknownTable = errors.New("unknown LUT table")

	// ErrOperandRange is returned when an operand does not fit in 2 bits.
	ErrOperandRange = errors.New("LUT operand out of range")
)

const patternCount = 16

// Validate checks every table of the catalog. Table names must be unique.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Tables))

	for _, t := range c.Tables {
		if seen[t.Name] {
			return fmt.Errorf("duplicate LUT table %s", t.Name)
		}
		seen[t.Name] = true

		if err := t.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that the table has exactly one entry for each 4-bit
// pattern and, when the table carries its operation, that every output is
// the result of that operation on the decoded operands.
func (t Table) Validate() error {
	if len(t.Entries) != patternCount {
		return fmt.Errorf("%w: %s has %d entries, want %d",
			ErrIncomplete, t.Name, len(t.Entries), patternCount)
	}

	var covered [patternCount]bool

	for _, e := range t.Entries {
		in, err := parseNibble(e.InputPattern)
		if err != nil {
			return fmt.Errorf("%w: %s: input %q", ErrIncomplete, t.Name, e.InputPattern)
		}

		if covered[in] {
			return fmt.Errorf("%w: %s: pattern %s appears twice",
				ErrIncomplete, t.Name, e.InputPattern)
		}
		covered[in] = true

		out, err := parseNibble(e.OutputValue)
		if err != nil {
			return fmt.Errorf("%w: %s: output %q for %s",
				ErrIncorrect, t.Name, e.OutputValue, e.InputPattern)
		}

		if t.apply == nil {
			continue
		}

		a, b := decodePattern(in)
		if want := t.apply(a, b) & 0xF; out != want {
			return fmt.Errorf("%w: %s: %s -> %s, want %s",
				ErrIncorrect, t.Name, e.InputPattern, e.OutputValue, Nibble(want))
		}
	}

	return nil
}

// Decode splits a 4-bit input pattern into its two 2-bit operands.
func Decode(pattern string) (a, b int, err error) {
	v, err := parseNibble(pattern)
	if err != nil {
		return 0, 0, err
	}

	a, b = decodePattern(v)

	return a, b, nil
}

func decodePattern(v int) (a, b int) {
	return (v >> 2) & 0x3, v & 0x3
}

func parseNibble(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%q is not a 4-bit string", s)
	}

	v, err := strconv.ParseUint(s, 2, 4)
	if err != nil {
		return 0, fmt.Errorf("%q is not a 4-bit string", s)
	}

	return int(v), nil
}
