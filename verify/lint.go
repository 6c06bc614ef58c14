package verify

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
)

// computeProgram is the LUT program each compute step needs.
var computeProgram = map[string]string{
	isa.MACMult: lut.OpMultiply,
	isa.MACAdd:  lut.OpAdd,
	isa.Compare: isa.CMP,
}

// RunLint performs static lint checks on an ISA program.
// It validates structure (STRUCT) and instruction order (ORDER).
// Returns a list of issues found, or empty list if no issues.
func RunLint(program []isa.Instruction) []Issue {
	var issues []Issue

	if len(program) == 0 {
		return []Issue{{
			Type:    IssueStruct,
			Index:   -1,
			Message: "Program is empty",
		}}
	}

	if program[0].Mnemonic != isa.Activate {
		issues = append(issues, Issue{
			Type:     IssueStruct,
			Index:    0,
			Mnemonic: program[0].Mnemonic,
			Message:  "Program must begin with ACTIVATE",
		})
	}

	loaded := make(map[string]bool)
	lastRow := -1

	for i, inst := range program {
		f, ok := isa.Describe(inst.Mnemonic)
		if !ok {
			issues = append(issues, structIssue(i, inst, "Unknown mnemonic"))
			continue
		}

		if len(inst.Operands) != f.Operands {
			issues = append(issues, Issue{
				Type:     IssueStruct,
				Index:    i,
				Mnemonic: inst.Mnemonic,
				Message: fmt.Sprintf("%s takes %d operands, got %d",
					inst.Mnemonic, f.Operands, len(inst.Operands)),
				Details: map[string]interface{}{
					"expected": f.Operands,
					"actual":   len(inst.Operands),
				},
			})

			continue
		}

		if f.Class != isa.ClassCtrl {
			if bad, ok := firstNonNumeric(inst.Operands); ok {
				issues = append(issues, structIssue(i, inst,
					fmt.Sprintf("Operand %q is not a number", bad)))

				continue
			}
		}

		switch f.Class {
		case isa.ClassProg:
			name, _ := isa.ProgramOf(inst.Mnemonic)
			loaded[name] = true
		case isa.ClassExe:
			need := computeProgram[inst.Mnemonic]
			if !loaded[need] {
				issues = append(issues, Issue{
					Type:     IssueOrder,
					Index:    i,
					Mnemonic: inst.Mnemonic,
					Message:  fmt.Sprintf("%s runs before any %s LUT program", inst.Mnemonic, need),
					Details:  map[string]interface{}{"needs": need},
				})
			}
		case isa.ClassMem:
			row, _ := strconv.ParseInt(inst.Operands[0], 0, 64)
			if int(row) < lastRow {
				issues = append(issues, Issue{
					Type:     IssueOrder,
					Index:    i,
					Mnemonic: inst.Mnemonic,
					Message:  fmt.Sprintf("Row %d is below the previous row %d", row, lastRow),
					Details: map[string]interface{}{
						"row":      row,
						"previous": lastRow,
					},
				})
			}

			lastRow = int(row)
		}
	}

	return issues
}

func structIssue(i int, inst isa.Instruction, msg string) Issue {
	return Issue{
		Type:     IssueStruct,
		Index:    i,
		Mnemonic: inst.Mnemonic,
		Message:  msg,
		Details:  map[string]interface{}{"instruction": inst.String()},
	}
}

func firstNonNumeric(operands []string) (string, bool) {
	for _, op := range operands {
		if _, err := strconv.ParseInt(op, 0, 64); err != nil {
			return op, true
		}
	}

	return "", false
}
