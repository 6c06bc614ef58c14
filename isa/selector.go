package isa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/lutpim/lut"
	"github.com/sarchlab/lutpim/pimlog"
	"github.com/sarchlab/lutpim/tac"
)

// HookPosInstLowered marks when a TAC line has been lowered. The hook item
// is a Lowering.
var HookPosInstLowered = &sim.HookPos{Name: "Inst Lowered"}

// HookPosInstSkipped marks when a TAC line has been skipped. The hook item
// is a Skip.
var HookPosInstSkipped = &sim.HookPos{Name: "Inst Skipped"}

// LoweredCores is the number of LUT cores the lowered masks address.
const LoweredCores = 4

// Lowering is the result of lowering one TAC line.
type Lowering struct {
	Line     int
	TAC      string
	Op       Op
	Fragment []Instruction
	Row      int
}

// Output is everything a selector run produced.
type Output struct {
	Program  []Instruction
	OpsUsed  OpSet
	Skipped  []Skip
	FinalRow int
}

// SelectorBuilder creates selectors.
type SelectorBuilder struct {
	initialRow   int
	advanceOnAdd bool
	hooks        []sim.Hook
}

// NewSelectorBuilder returns a builder with the default settings.
func NewSelectorBuilder() SelectorBuilder {
	return SelectorBuilder{}
}

// WithInitialRow sets the row activated at the start of the program.
func (b SelectorBuilder) WithInitialRow(row int) SelectorBuilder {
	b.initialRow = row
	return b
}

// WithRowAdvanceOnAdd makes add lowering move the row cursor, like mul.
func (b SelectorBuilder) WithRowAdvanceOnAdd(advance bool) SelectorBuilder {
	b.advanceOnAdd = advance
	return b
}

// WithHook attaches a hook to every selector built.
func (b SelectorBuilder) WithHook(hook sim.Hook) SelectorBuilder {
	b.hooks = append(append([]sim.Hook(nil), b.hooks...), hook)
	return b
}

// Build creates a selector. The program of a new selector already holds the
// activation of the initial row.
func (b SelectorBuilder) Build(name string) *Selector {
	s := &Selector{
		name:         name,
		row:          b.initialRow,
		advanceOnAdd: b.advanceOnAdd,
		ops:          make(OpSet),
	}

	for _, h := range b.hooks {
		s.AcceptHook(h)
	}

	s.program = append(s.program,
		NewInstruction(Activate, strconv.Itoa(s.row)).WithComment("Activate row buffer"))

	return s
}

// Selector lowers the TAC of one document into an ISA program. It owns the
// row cursor and the operations-used set of that document and must not be
// reused for another one.
type Selector struct {
	sim.HookableBase

	name         string
	advanceOnAdd bool

	row     int
	ops     OpSet
	program []Instruction
	skipped []Skip
	line    int
}

// Name returns the name of the selector.
func (s *Selector) Name() string {
	return s.name
}

// Row returns the current row cursor.
func (s *Selector) Row() int {
	return s.row
}

// Select lowers TAC lines in order and returns the run's output so far.
func (s *Selector) Select(lines []string) Output {
	for _, line := range lines {
		_, _ = s.Lower(line)
	}

	return s.Output()
}

// SelectInstructions lowers built TAC instructions.
func (s *Selector) SelectInstructions(insts []tac.Instruction) Output {
	return s.Select(tac.Render(insts))
}

// Output returns a snapshot of the run.
func (s *Selector) Output() Output {
	return Output{
		Program:  append([]Instruction(nil), s.program...),
		OpsUsed:  s.ops.Clone(),
		Skipped:  append([]Skip(nil), s.skipped...),
		FinalRow: s.row,
	}
}

// Lower lowers a single TAC line and appends the result to the program. A
// line that cannot be lowered is recorded as skipped and a *SkipError is
// returned; the selector state is left as it was. Blank lines produce
// nothing.
func (s *Selector) Lower(text string) ([]Instruction, error) {
	s.line++

	t, ok := tokenize(text)
	if !ok {
		return nil, nil
	}

	frag, skipErr := s.lower(t)
	if skipErr != nil {
		skipErr.Skip.Line = s.line
		skipErr.Skip.TAC = strings.TrimSpace(text)
		s.skip(skipErr.Skip)

		return nil, skipErr
	}

	s.program = append(s.program, frag...)

	pimlog.Trace("Selector",
		"Behavior", "Lower",
		"Name", s.name,
		"Line", s.line,
		"Op", t.op.String(),
		"Row", s.row,
	)

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosInstLowered,
		Item: Lowering{
			Line:     s.line,
			TAC:      strings.TrimSpace(text),
			Op:       t.op,
			Fragment: frag,
			Row:      s.row,
		},
	})

	return frag, nil
}

func (s *Selector) skip(sk Skip) {
	s.skipped = append(s.skipped, sk)

	pimlog.Trace("Selector",
		"Behavior", "Skip",
		"Name", s.name,
		"Line", sk.Line,
		"Reason", sk.Reason.String(),
		"Detail", sk.Detail,
	)

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosInstSkipped,
		Item:   sk,
	})
}

type tacLine struct {
	operator string
	op       Op
	operands []string
}

// tokenize splits a TAC line into its operator and operands. The `;`
// annotation is dropped and operand commas are removed.
func tokenize(text string) (tacLine, bool) {
	body, _, _ := strings.Cut(text, ";")

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return tacLine{}, false
	}

	var t tacLine

	if len(fields) >= 3 && fields[1] == "=" {
		t.operator = fields[2]
		fields = fields[3:]
	} else {
		t.operator = fields[0]
		fields = fields[1:]
	}

	t.operator = strings.ToLower(t.operator)
	t.op = DecodeOp(t.operator)

	for _, f := range fields {
		if f = strings.Trim(f, ","); f != "" {
			t.operands = append(t.operands, f)
		}
	}

	return t, true
}

// lower validates a tokenized line and dispatches it. Validation happens
// before any state change.
func (s *Selector) lower(t tacLine) ([]Instruction, *SkipError) {
	if t.op == OpUnsupported {
		return nil, skipError(Unsupported, "no lowering for %q", t.operator)
	}

	if len(t.operands) < t.op.minOperands() {
		return nil, skipError(Malformed, "%s needs %d operands, got %d",
			t.op, t.op.minOperands(), len(t.operands))
	}

	switch t.op {
	case OpMul:
		return s.lowerMul(), nil
	case OpAdd:
		return s.lowerAdd(), nil
	case OpLoad:
		return s.lowerLoad(), nil
	case OpStore:
		return s.lowerStore(), nil
	case OpCompare:
		return s.lowerCompare(), nil
	case OpBranch:
		return lowerBranch(t.operands)
	default:
		panic(fmt.Sprintf("isa: op %d has no lowering", t.op))
	}
}

func skipError(reason SkipReason, format string, args ...any) *SkipError {
	return &SkipError{Skip: Skip{Reason: reason, Detail: fmt.Sprintf(format, args...)}}
}

func (s *Selector) advance() string {
	s.row++
	return strconv.Itoa(s.row)
}

// lowerMul programs cores 0-1 for multiplication and cores 2-3 for the
// partial sums, then runs a two-phase multiply-accumulate.
func (s *Selector) lowerMul() []Instruction {
	s.ops.Add(lut.OpMultiply)
	s.ops.Add(lut.OpAdd)

	frag := []Instruction{
		NewInstruction(LUTProgMult, "0x3", "0x40").WithComment("Program cores 0-1 for 4-bit mult"),
		NewInstruction(LUTProgAdd, "0xC", "0x80").WithComment("Program cores 2-3 for 4-bit add"),
		NewInstruction(MACMult, "1").WithComment("First multiply phase"),
		NewInstruction(MACAdd, "1").WithComment("Partial sum"),
		NewInstruction(MACMult, "2").WithComment("Second multiply phase"),
		NewInstruction(MACAdd, "2").WithComment("Final accumulate"),
	}

	row := s.advance()

	return append(frag, NewInstruction(Store, row).WithComment("Store results"))
}

func (s *Selector) lowerAdd() []Instruction {
	s.ops.Add(lut.OpAdd)

	if s.advanceOnAdd {
		s.advance()
	}

	return []Instruction{
		NewInstruction(LUTProgAdd, "0xF", "0x80").WithComment("Program all cores for addition"),
		NewInstruction(MACAdd, "0").WithComment("Execute addition"),
	}
}

func (s *Selector) lowerLoad() []Instruction {
	row := s.advance()
	return []Instruction{NewInstruction(Load, row).WithComment("Load from row " + row)}
}

func (s *Selector) lowerStore() []Instruction {
	row := s.advance()
	return []Instruction{NewInstruction(Store, row).WithComment("Store to row " + row)}
}

func (s *Selector) lowerCompare() []Instruction {
	s.ops.Add(CMP)

	return []Instruction{
		NewInstruction(LUTProgCmp, "0xF", "0xC0").WithComment("Program comparison LUTs"),
		NewInstruction(Compare).WithComment("Execute comparison"),
	}
}

// lowerBranch takes either a condition and two targets or a single target.
func lowerBranch(operands []string) ([]Instruction, *SkipError) {
	switch len(operands) {
	case 3:
		return []Instruction{NewInstruction(Branch, operands...)}, nil
	case 1:
		return []Instruction{NewInstruction(Jump, operands[0])}, nil
	default:
		return nil, skipError(Malformed,
			"branch needs a target or a condition and two targets, got %d operands",
			len(operands))
	}
}
