// Package isa lowers three-address code into the mnemonic instruction set of
// the LUT-based PIM device, and converts that instruction set to and from its
// text and binary forms.
package isa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Mnemonics of the PIM instruction set.
const (
	Activate    = "ACTIVATE"
	Load        = "LOAD"
	Store       = "STORE"
	LUTProgMult = "LUT_PROG_MULT"
	LUTProgAdd  = "LUT_PROG_ADD"
	LUTProgCmp  = "LUT_PROG_CMP"
	MACMult     = "MAC_MULT"
	MACAdd      = "MAC_ADD"
	Compare     = "COMPARE"
	Branch      = "BRANCH"
	Jump        = "JUMP"
	End         = "END"
)

// ErrEmptyLine is returned by Parse for a line that holds no instruction.
var ErrEmptyLine = errors.New("empty ISA line")

// Instruction is one line of an ISA program.
type Instruction struct {
	Mnemonic string
	Operands []string
	Comment  string
}

// NewInstruction creates an instruction without a comment.
func NewInstruction(mnemonic string, operands ...string) Instruction {
	return Instruction{Mnemonic: mnemonic, Operands: operands}
}

// WithComment returns a copy of the instruction annotated with comment.
func (i Instruction) WithComment(comment string) Instruction {
	i.Comment = comment
	return i
}

// String renders the instruction as `MNEMONIC op1, op2  ; comment`.
func (i Instruction) String() string {
	var b strings.Builder

	b.WriteString(i.Mnemonic)

	if len(i.Operands) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(i.Operands, ", "))
	}

	if i.Comment != "" {
		b.WriteString("  ; ")
		b.WriteString(i.Comment)
	}

	return b.String()
}

// Parse reads one instruction from its text form.
func Parse(line string) (Instruction, error) {
	body, comment, _ := strings.Cut(line, ";")
	body = strings.TrimSpace(body)

	if body == "" {
		return Instruction{}, ErrEmptyLine
	}

	inst := Instruction{Comment: strings.TrimSpace(comment)}

	var rest string

	inst.Mnemonic = body
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		inst.Mnemonic, rest = body[:i], body[i+1:]
	}

	for _, op := range strings.Split(rest, ",") {
		if op = strings.TrimSpace(op); op != "" {
			inst.Operands = append(inst.Operands, op)
		}
	}

	return inst, nil
}

// ParseProgram reads a program, one instruction per line. Blank lines and
// lines holding only a comment are ignored.
func ParseProgram(r io.Reader) ([]Instruction, error) {
	var prog []Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		inst, err := Parse(scanner.Text())
		if errors.Is(err, ErrEmptyLine) {
			continue
		}

		prog = append(prog, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ISA program at line %d: %w", lineNo+1, err)
	}

	return prog, nil
}

// Write prints one instruction per line.
func Write(w io.Writer, prog []Instruction) error {
	bw := bufio.NewWriter(w)

	for _, inst := range prog {
		if _, err := fmt.Fprintln(bw, inst.String()); err != nil {
			return fmt.Errorf("write ISA: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ISA: %w", err)
	}

	return nil
}
