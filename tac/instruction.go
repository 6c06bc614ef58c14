// Package tac turns recognized IR statements into three-address code.
//
// Every TAC line is self-contained text; no symbol is resolved across lines
// and the output keeps the order of the input.
package tac

import (
	"fmt"
	"strings"

	"github.com/sarchlab/lutpim/ir"
)

// Opcode is the operation of a TAC instruction. Name carries the operator of
// a binary op (add, mul, ...) or the predicate of a compare (eq, slt, ...);
// it is empty for the other kinds.
type Opcode struct {
	Kind ir.Kind
	Name string
}

// Instruction represents a single TAC line.
type Instruction struct {
	Opcode   Opcode
	Dest     string   // Empty for stores and branches
	Operands []string // For branches: [cond,] true-label[, false-label]
	RawText  string   // Trimmed IR line, kept for branches only
}

// String renders the instruction in its TAC text form.
func (i Instruction) String() string {
	switch i.Opcode.Kind {
	case ir.BinaryOp:
		return fmt.Sprintf("%s = %s %s",
			i.Dest, i.Opcode.Name, strings.Join(i.Operands, ", "))
	case ir.Compare:
		return fmt.Sprintf("%s = icmp %s %s",
			i.Dest, i.Opcode.Name, strings.Join(i.Operands, ", "))
	case ir.Load:
		return i.Dest + " = LOAD"
	case ir.Store:
		return "STORE " + strings.Join(i.Operands, ", ")
	case ir.Branch:
		return i.branchString()
	default:
		return ""
	}
}

func (i Instruction) branchString() string {
	var b strings.Builder

	b.WriteString("BRANCH")
	if len(i.Operands) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(i.Operands, ", "))
	}

	if i.RawText != "" {
		b.WriteString("  ; ")
		b.WriteString(i.RawText)
	}

	return b.String()
}
