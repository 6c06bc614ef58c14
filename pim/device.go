// Package pim models a LUT-based processing-in-memory device that replays
// ISA programs one instruction per cycle.
//
// The model is functional. It follows the active row and the LUT program
// loaded into each core, counts instructions by class and records a fault
// whenever an instruction cannot run on the current state. Branches do not
// transfer control; labels are not resolved and execution falls through.
package pim

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
	"github.com/sarchlab/lutpim/pimlog"
)

// HookPosInstExecuted marks when an instruction has been replayed. The hook
// item is an Execution.
var HookPosInstExecuted = &sim.HookPos{Name: "Inst Executed"}

// Execution describes one replayed instruction.
type Execution struct {
	PC    int
	Inst  isa.Instruction
	Fault *Fault
}

// Fault is an instruction the device could not execute.
type Fault struct {
	PC     int
	Inst   isa.Instruction
	Reason string
}

func (f Fault) String() string {
	return fmt.Sprintf("pc %d (%s): %s", f.PC, f.Inst, f.Reason)
}

type coreState struct {
	Program string
	Config  int
	Table   *lut.Table
}

type deviceState struct {
	PC        int
	ActiveRow int
	Cycles    int
	Cores     []coreState
	Counts    map[string]int
	Faults    []Fault
}

// Device is a PIM device.
type Device struct {
	*sim.TickingComponent

	numRows int
	catalog *lut.Catalog

	program []isa.Instruction
	state   deviceState
}

// MapProgram sets the program the device replays and schedules the first
// cycle.
func (d *Device) MapProgram(prog []isa.Instruction) {
	d.program = append([]isa.Instruction(nil), prog...)
	d.state.PC = 0

	if len(d.program) > 0 {
		d.TickNow()
	}
}

// Tick replays one instruction.
func (d *Device) Tick() (madeProgress bool) {
	if d.state.PC >= len(d.program) {
		return false
	}

	pc := d.state.PC
	inst := d.program[pc]

	exec := Execution{PC: pc, Inst: inst}
	if reason := d.execute(inst); reason != "" {
		fault := Fault{PC: pc, Inst: inst, Reason: reason}
		d.state.Faults = append(d.state.Faults, fault)
		exec.Fault = &fault
	}

	d.state.PC++
	d.state.Cycles++

	pimlog.Trace("Inst",
		"Behavior", "Execute",
		"Time", float64(d.Engine.CurrentTime()*1e9),
		"Device", d.Name(),
		"PC", pc,
		"Inst", inst.String(),
		"Row", d.state.ActiveRow,
	)

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosInstExecuted,
		Item:   exec,
	})

	return true
}

// execute applies one instruction to the device state. It returns a fault
// reason, or an empty string on success.
func (d *Device) execute(inst isa.Instruction) string {
	f, ok := isa.Describe(inst.Mnemonic)
	if !ok {
		return "unknown mnemonic"
	}

	if len(inst.Operands) != f.Operands {
		return fmt.Sprintf("expects %d operands, got %d", f.Operands, len(inst.Operands))
	}

	d.state.Counts[f.Class.String()]++

	switch f.Class {
	case isa.ClassMem:
		return d.setRow(inst.Operands[0])
	case isa.ClassProg:
		return d.loadLUT(inst)
	case isa.ClassExe:
		return d.compute(inst)
	case isa.ClassCtrl, isa.ClassEnd:
		return ""
	default:
		return "unknown class"
	}
}

func (d *Device) setRow(operand string) string {
	row, err := strconv.ParseInt(operand, 0, 64)
	if err != nil {
		return fmt.Sprintf("row %q is not a number", operand)
	}

	if row < 0 || int(row) >= d.numRows {
		return fmt.Sprintf("row %d is outside 0-%d", row, d.numRows-1)
	}

	d.state.ActiveRow = int(row)

	return ""
}

// loadLUT loads a LUT program into every core selected by the mask.
func (d *Device) loadLUT(inst isa.Instruction) string {
	name, _ := isa.ProgramOf(inst.Mnemonic)

	mask, err := strconv.ParseInt(inst.Operands[0], 0, 64)
	if err != nil || mask <= 0 || mask >= 1<<len(d.state.Cores) {
		return fmt.Sprintf("core mask %s does not select any of %d cores",
			inst.Operands[0], len(d.state.Cores))
	}

	config, err := strconv.ParseInt(inst.Operands[1], 0, 64)
	if err != nil {
		return fmt.Sprintf("config %q is not a number", inst.Operands[1])
	}

	var table *lut.Table
	if t, ok := d.catalog.Table(name); ok {
		table = &t
	} else if name != isa.CMP {
		return fmt.Sprintf("no LUT table %s", name)
	}

	for i := range d.state.Cores {
		if mask&(1<<i) == 0 {
			continue
		}

		d.state.Cores[i] = coreState{Program: name, Config: int(config), Table: table}
	}

	return ""
}

// computeNeeds is the LUT program each compute mnemonic runs on.
var computeNeeds = map[string]string{
	isa.MACMult: lut.OpMultiply,
	isa.MACAdd:  lut.OpAdd,
	isa.Compare: isa.CMP,
}

func (d *Device) compute(inst isa.Instruction) string {
	need := computeNeeds[inst.Mnemonic]

	for _, c := range d.state.Cores {
		if c.Program == need {
			return ""
		}
	}

	return fmt.Sprintf("no core is programmed with %s", need)
}

// Stats is the outcome of a replay.
type Stats struct {
	Cycles    int
	ActiveRow int
	Counts    map[string]int
	Programs  []string
	Faults    []Fault
}

// Stats returns what the device has done so far.
func (d *Device) Stats() Stats {
	s := Stats{
		Cycles:    d.state.Cycles,
		ActiveRow: d.state.ActiveRow,
		Counts:    make(map[string]int, len(d.state.Counts)),
		Faults:    append([]Fault(nil), d.state.Faults...),
	}

	for k, v := range d.state.Counts {
		s.Counts[k] = v
	}

	for _, c := range d.state.Cores {
		s.Programs = append(s.Programs, c.Program)
	}

	return s
}

// Done tells whether the whole program has been replayed.
func (d *Device) Done() bool {
	return d.state.PC >= len(d.program)
}
