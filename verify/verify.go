// Package verify checks lowered ISA programs before they are handed to a
// device.
//
// Verification has two stages:
//
// 1. Static lint (lint.go), which needs nothing but the program text
//   - STRUCT checks: the program starts with ACTIVATE, mnemonics are known,
//     operand counts and numeric operands are well formed
//   - ORDER checks: every compute step runs after a LUT program of its kind
//     has been loaded, and LOAD/STORE rows never go backwards
//
// 2. Replay (report.go), which runs the program on a pim.Device and collects
//    its faults and statistics
//
// # Usage Example
//
//	res, err := pipeline.TranslateFile("kernel.ll")
//	if err != nil {
//	    return err
//	}
//
//	report := verify.GenerateReport(res.ISA.Program, pim.NewBuilder())
//	report.WriteReport(os.Stdout)
//	if !report.Passed() {
//	    return errors.New("verification failed")
//	}
package verify

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Malformed instruction or program shape
	IssueOrder  IssueType = "ORDER"  // Instruction runs before what it depends on
)

// Issue represents a single lint issue
type Issue struct {
	Type     IssueType              // STRUCT or ORDER
	Index    int                    // Instruction index (-1 if not applicable)
	Mnemonic string                 // Mnemonic of the instruction, if any
	Message  string                 // Human-readable description
	Details  map[string]interface{} // Additional structured data
}
