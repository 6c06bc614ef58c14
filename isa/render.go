package isa

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderProgram writes the program as a numbered listing.
func RenderProgram(w io.Writer, title string, prog []Instruction) error {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "Mnemonic", "Operands", "Comment"})

	for i, inst := range prog {
		tw.AppendRow(table.Row{i, inst.Mnemonic, strings.Join(inst.Operands, ", "), inst.Comment})
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n", title, tw.Render()); err != nil {
		return fmt.Errorf("render ISA program: %w", err)
	}

	return nil
}

// RenderSkipped writes the skipped TAC lines of a run.
func RenderSkipped(w io.Writer, skipped []Skip) error {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Line", "TAC", "Reason", "Detail"})

	for _, s := range skipped {
		tw.AppendRow(table.Row{s.Line, s.TAC, s.Reason.String(), s.Detail})
	}

	if _, err := fmt.Fprintf(w, "Skipped TAC\n%s\n", tw.Render()); err != nil {
		return fmt.Errorf("render skipped TAC: %w", err)
	}

	return nil
}
