package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/pim"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	InstructionCount int
	LintIssues       []Issue
	StructIssues     []Issue
	OrderIssues      []Issue
	Replay           pim.Stats
	ReplayErr        error
	ReplayOK         bool
	Program          []isa.Instruction
}

// GenerateReport runs both lint and a replay on a device built by device,
// returns a report
func GenerateReport(program []isa.Instruction, device pim.Builder) *VerificationReport {
	report := &VerificationReport{
		InstructionCount: len(program),
		Program:          program,
	}

	report.LintIssues = RunLint(program)

	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.OrderIssues = append(report.OrderIssues, issue)
		}
	}

	report.Replay, report.ReplayErr = pim.Replay(device, "Verify.Device", program)
	report.ReplayOK = report.ReplayErr == nil && len(report.Replay.Faults) == 0

	return report
}

// Passed tells whether the program is free of lint issues and replay faults.
func (r *VerificationReport) Passed() bool {
	return len(r.LintIssues) == 0 && r.ReplayOK
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "PIM PROGRAM VERIFICATION REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\n✓ Loaded %d instructions\n", r.InstructionCount)

	// STAGE 1: LINT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintf(w, "⚠ Found %d lint issues:\n\n", len(r.LintIssues))
		fmt.Fprintln(w, issueTable("STRUCT ISSUES", r.StructIssues))
		fmt.Fprintln(w, issueTable("ORDER ISSUES", r.OrderIssues))
	}

	// STAGE 2: REPLAY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: REPLAY")
	fmt.Fprintln(w, separator)

	switch {
	case r.ReplayErr != nil:
		fmt.Fprintf(w, "⚠ Replay error: %v\n", r.ReplayErr)
	case len(r.Replay.Faults) > 0:
		fmt.Fprintf(w, "⚠ Replay raised %d faults:\n", len(r.Replay.Faults))
		for _, f := range r.Replay.Faults {
			fmt.Fprintf(w, "  %s\n", f)
		}
	default:
		fmt.Fprintln(w, "✓ Replay completed without faults")
	}

	if err := r.Replay.Render(w); err != nil {
		fmt.Fprintf(w, "⚠ cannot render replay statistics: %v\n", err)
	}

	// STAGE 3: SUMMARY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d ORDER)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.OrderIssues))
	fmt.Fprintf(w, "Replay Result: %d cycles, %d faults\n",
		r.Replay.Cycles, len(r.Replay.Faults))

	if r.Passed() {
		fmt.Fprintln(w, "✓ PROGRAM PASSED ALL CHECKS")
	} else {
		fmt.Fprintln(w, "⚠ PROGRAM FAILED VERIFICATION")
	}

	fmt.Fprintln(w)
}

func issueTable(title string, issues []Issue) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Mnemonic", "Message"})

	for _, issue := range issues {
		t.AppendRow(table.Row{issue.Index, issue.Mnemonic, issue.Message})
	}

	return fmt.Sprintf("%s (%d)\n%s", title, len(issues), t.Render())
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	r.WriteReport(file)

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	return nil
}
