package pim

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/lutpim/isa"
)

// Replay runs a program to completion on a fresh device with its own serial
// engine.
func Replay(b Builder, name string, prog []isa.Instruction) (Stats, error) {
	engine := sim.NewSerialEngine()
	d := b.WithEngine(engine).Build(name)

	d.MapProgram(prog)

	if err := engine.Run(); err != nil {
		return d.Stats(), fmt.Errorf("replay %s: %w", name, err)
	}

	if !d.Done() {
		return d.Stats(), fmt.Errorf("replay %s: stopped at pc %d of %d",
			name, d.state.PC, len(d.program))
	}

	return d.Stats(), nil
}

// Render writes the replay statistics as tables.
func (s Stats) Render(w io.Writer) error {
	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"Cycles", "Active Row", "Faults"})
	summary.AppendRow(table.Row{s.Cycles, s.ActiveRow, len(s.Faults)})

	classes := table.NewWriter()
	classes.AppendHeader(table.Row{"Class", "Count"})

	for _, c := range []isa.Class{isa.ClassMem, isa.ClassProg, isa.ClassExe, isa.ClassCtrl, isa.ClassEnd} {
		if n := s.Counts[c.String()]; n > 0 {
			classes.AppendRow(table.Row{c.String(), n})
		}
	}

	cores := table.NewWriter()
	cores.AppendHeader(table.Row{"Core", "Program"})

	for i, p := range s.Programs {
		if p == "" {
			p = "-"
		}

		cores.AppendRow(table.Row{i, p})
	}

	_, err := fmt.Fprintf(w, "Replay\n%s\nInstructions by Class\n%s\nCore LUT Programs\n%s\n",
		summary.Render(), classes.Render(), cores.Render())

	return err
}
