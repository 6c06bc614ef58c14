package freq

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Report is the frequency and lookup table report of one source text.
type Report struct {
	OperationFrequency Counts            `json:"Operation Frequency" yaml:"Operation Frequency"`
	LookupTable        map[string]string `json:"Lookup Table" yaml:"Lookup Table"`
}

// BuildReport analyzes text. Only opcodes that occur are reported.
func BuildReport(text string) Report {
	return Report{
		OperationFrequency: Analyze(text).NonZero(),
		LookupTable:        LookupTable(),
	}
}

// Format is an output format of a report.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat accepts json, yaml or text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Write renders the report in the given format.
func (r Report) Write(w io.Writer, format Format) error {
	var err error

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(r); err == nil {
			err = enc.Close()
		}
	case FormatText:
		err = r.writeText(w)
	default:
		err = fmt.Errorf("unknown report format %q", format)
	}

	if err != nil {
		return fmt.Errorf("write frequency report: %w", err)
	}

	return nil
}

func (r Report) writeText(w io.Writer) error {
	freqTable := table.NewWriter()
	freqTable.AppendHeader(table.Row{"Opcode", "Count"})

	lookup := table.NewWriter()
	lookup.AppendHeader(table.Row{"Opcode", "Mnemonic"})

	for _, v := range Vocabulary {
		if n, ok := r.OperationFrequency[v.Opcode]; ok {
			freqTable.AppendRow(table.Row{v.Opcode, n})
		}

		if m, ok := r.LookupTable[v.Opcode]; ok {
			lookup.AppendRow(table.Row{v.Opcode, m})
		}
	}

	_, err := fmt.Fprintf(w, "Operation Frequency\n%s\n\nLookup Table\n%s\n",
		freqTable.Render(), lookup.Render())

	return err
}

// SaveToFile writes the report to a file.
func (r Report) SaveToFile(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := r.Write(f, format); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	return nil
}
