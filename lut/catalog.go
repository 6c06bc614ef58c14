// Package lut holds the truth tables that program the PIM compute cores.
//
// A core evaluates a 4-bit input pattern made of two 2-bit operands, the
// first operand in the high pair. OP_A is 2-bit multiplication and OP_B is
// 2-bit addition; both produce a 4-bit result.
package lut

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Names of the built-in tables.
const (
	OpMultiply = "OP_A"
	OpAdd      = "OP_B"
)

// Entry maps one input pattern to its output value.
type Entry struct {
	InputPattern string `yaml:"input_pattern"`
	OutputValue  string `yaml:"output_value"`
	Description  string `yaml:"description"`
}

// Table is a complete LUT program for one operation.
type Table struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Entries     []Entry `yaml:"entries"`

	apply func(a, b int) int
}

// Catalog is the set of LUT programs known to the backend.
type Catalog struct {
	Tables []Table `yaml:"tables"`
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the built-in catalog. The tables are validated the first
// time Default is called.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c := &Catalog{Tables: []Table{multiplyTable(), addTable()}}
		if err := c.Validate(); err != nil {
			panic(fmt.Sprintf("built-in LUT catalog is invalid: %v", err))
		}

		defaultCatalog = c
	})

	return defaultCatalog
}

// Table returns the table with the given name.
func (c *Catalog) Table(name string) (Table, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}

	return Table{}, false
}

// Lookup evaluates a table on two 2-bit operands.
func (c *Catalog) Lookup(name string, a, b int) (int, error) {
	t, ok := c.Table(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	return t.Lookup(a, b)
}

// WriteYAML exports the catalog.
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode LUT catalog: %w", err)
	}

	return enc.Close()
}

// Lookup evaluates the table on two 2-bit operands.
func (t Table) Lookup(a, b int) (int, error) {
	if a < 0 || a > 3 || b < 0 || b > 3 {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrOperandRange, a, b)
	}

	pattern := Pattern(a, b)
	for _, e := range t.Entries {
		if e.InputPattern == pattern {
			return parseNibble(e.OutputValue)
		}
	}

	return 0, fmt.Errorf("%w: %s has no entry for %s", ErrIncomplete, t.Name, pattern)
}

// Pattern encodes two 2-bit operands into a 4-bit input pattern.
func Pattern(a, b int) string {
	return fmt.Sprintf("%02b%02b", a&0x3, b&0x3)
}

// Nibble formats a value as a 4-bit string.
func Nibble(v int) string {
	return fmt.Sprintf("%04b", v&0xF)
}
