// Package freq counts opcode names in raw source text.
//
// Counting is plain substring matching, so a name is also counted inside
// longer identifiers ("address" counts as add). The numbers are a rough
// diagnostic and nothing in the lowering path reads them.
package freq

import "strings"

// Vocabulary lists the counted opcodes with their mnemonic, in report order.
var Vocabulary = []struct {
	Opcode   string
	Mnemonic string
}{
	{"add", "ADD"},
	{"sub", "SUB"},
	{"mul", "MUL"},
	{"load", "LD"},
	{"store", "ST"},
	{"icmp", "CMP"},
	{"br", "BR"},
	{"getelementptr", "GEP"},
	{"sext", "SEXT"},
	{"trunc", "TRUNC"},
	{"phi", "PHI"},
}

// Counts maps an opcode to its number of occurrences.
type Counts map[string]int

// Analyze counts every vocabulary opcode in text. Opcodes that do not occur
// are present with a zero count.
func Analyze(text string) Counts {
	counts := make(Counts, len(Vocabulary))
	for _, v := range Vocabulary {
		counts[v.Opcode] = strings.Count(text, v.Opcode)
	}

	return counts
}

// NonZero returns the opcodes that occur at least once.
func (c Counts) NonZero() Counts {
	nz := make(Counts)
	for op, n := range c {
		if n > 0 {
			nz[op] = n
		}
	}

	return nz
}

// LookupTable returns the opcode to mnemonic table.
func LookupTable() map[string]string {
	t := make(map[string]string, len(Vocabulary))
	for _, v := range Vocabulary {
		t[v.Opcode] = v.Mnemonic
	}

	return t
}
