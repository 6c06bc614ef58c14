package lut

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render writes the table as a text grid.
func (t Table) Render(w io.Writer) error {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Input", "Output", "Description"})

	for _, e := range t.Entries {
		tw.AppendRow(table.Row{e.InputPattern, e.OutputValue, e.Description})
	}

	// Titles are printed on their own line; go-pretty wraps a title to the
	// table width.
	if _, err := fmt.Fprintf(w, "%s: %s\n%s\n", t.Name, t.Description, tw.Render()); err != nil {
		return fmt.Errorf("render LUT %s: %w", t.Name, err)
	}

	return nil
}

// Render writes every table of the catalog.
func (c *Catalog) Render(w io.Writer) error {
	for _, t := range c.Tables {
		if err := t.Render(w); err != nil {
			return err
		}
	}

	return nil
}

// Lookup evaluates one of the built-in tables.
func Lookup(name string, a, b int) (int, error) {
	return Default().Lookup(name, a, b)
}
