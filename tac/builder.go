package tac

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/lutpim/ir"
)

// FromStatement converts one classified IR statement.
func FromStatement(stmt ir.Statement) Instruction {
	inst := Instruction{
		Opcode: Opcode{Kind: stmt.Kind},
		Dest:   stmt.Dest,
	}

	switch stmt.Kind {
	case ir.BinaryOp:
		inst.Opcode.Name = stmt.Op
		inst.Operands = cloneStrings(stmt.Operands)
	case ir.Compare:
		inst.Opcode.Name = stmt.Predicate
		inst.Operands = cloneStrings(stmt.Operands)
	case ir.Load:
	case ir.Store:
		inst.Operands = cloneStrings(stmt.Operands)
	case ir.Branch:
		if stmt.Cond != "" {
			inst.Operands = append(inst.Operands, stmt.Cond)
		}
		inst.Operands = append(inst.Operands, stmt.Targets...)
		inst.RawText = stmt.Raw
	}

	return inst
}

// Build converts statements in order.
func Build(stmts []ir.Statement) []Instruction {
	insts := make([]Instruction, 0, len(stmts))
	for _, stmt := range stmts {
		insts = append(insts, FromStatement(stmt))
	}

	return insts
}

// Render returns the TAC text of each instruction.
func Render(insts []Instruction) []string {
	lines := make([]string, 0, len(insts))
	for _, inst := range insts {
		lines = append(lines, inst.String())
	}

	return lines
}

// Write prints one instruction per line.
func Write(w io.Writer, insts []Instruction) error {
	bw := bufio.NewWriter(w)

	for _, inst := range insts {
		if _, err := fmt.Fprintln(bw, inst.String()); err != nil {
			return fmt.Errorf("write TAC: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TAC: %w", err)
	}

	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}

	return append([]string(nil), s...)
}
