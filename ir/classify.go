package ir

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sarchlab/lutpim/pimlog"
)

const (
	name  = `%([-\w.$]+)`
	value = `(%[-\w.$]+|-?\d+)`
)

var (
	// %dest = <op> [flags] <type> <a>, <b>
	binaryOpPattern = regexp.MustCompile(`^` + name +
		`\s*=\s*(add|sub|mul|div|sdiv|and|or|xor)\s+` +
		`(?:(?:nsw|nuw|exact|disjoint)\s+)*\w+\s+` + value + `,\s*` + value)

	// %dest = icmp <pred> <type> <a>, <b>
	comparePattern = regexp.MustCompile(`^` + name +
		`\s*=\s*icmp\s+(\w+)\s+\w+\s+` + value + `,\s*` + value)

	// %dest = load <type>, ...
	loadPattern = regexp.MustCompile(`^` + name + `\s*=\s*load\s+\w+,`)

	// store <type> <src>, ...
	storePattern = regexp.MustCompile(`^store\s+\w+\s+` + value + `,`)

	// br label ... | br i1 ...
	branchPattern = regexp.MustCompile(`^br\s+(label|i1)\b`)

	branchCondPattern  = regexp.MustCompile(`^br\s+i1\s+(%[-\w.$]+|true|false)`)
	branchLabelPattern = regexp.MustCompile(`label\s+` + name)
)

// shape pairs a statement kind with the matcher that recognizes it.
type shape struct {
	kind  Kind
	match func(line string) (Statement, bool)
}

// shapes is evaluated in order, first match wins. The order matters because
// some shapes are textual prefixes of others.
var shapes = []shape{
	{BinaryOp, matchBinaryOp},
	{Compare, matchCompare},
	{Load, matchLoad},
	{Store, matchStore},
	{Branch, matchBranch},
}

// Classify recognizes a single IR line. The second return value is false if
// the line matches none of the known shapes.
func Classify(line string) (Statement, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Statement{}, false
	}

	for _, s := range shapes {
		if stmt, ok := s.match(line); ok {
			stmt.Kind = s.kind
			stmt.Raw = line
			return stmt, true
		}
	}

	return Statement{}, false
}

// ClassifyAll classifies every line of text, keeping source order.
func ClassifyAll(text string) []Statement {
	stmts, _ := Scan(strings.NewReader(text))
	return stmts
}

// Scan classifies a stream line by line.
func Scan(r io.Reader) ([]Statement, error) {
	var stmts []Statement

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		stmt, ok := Classify(scanner.Text())
		if !ok {
			pimlog.Trace("IR", "Behavior", "Drop", "Line", lineNo)
			continue
		}

		stmts = append(stmts, stmt)
	}

	if err := scanner.Err(); err != nil {
		return stmts, fmt.Errorf("scan IR at line %d: %w", lineNo+1, err)
	}

	return stmts, nil
}

func matchBinaryOp(line string) (Statement, bool) {
	m := binaryOpPattern.FindStringSubmatch(line)
	if m == nil {
		return Statement{}, false
	}

	return Statement{
		Dest:     m[1],
		Op:       m[2],
		Operands: []string{symbol(m[3]), symbol(m[4])},
	}, true
}

func matchCompare(line string) (Statement, bool) {
	m := comparePattern.FindStringSubmatch(line)
	if m == nil {
		return Statement{}, false
	}

	return Statement{
		Dest:      m[1],
		Op:        "icmp",
		Predicate: m[2],
		Operands:  []string{symbol(m[3]), symbol(m[4])},
	}, true
}

func matchLoad(line string) (Statement, bool) {
	m := loadPattern.FindStringSubmatch(line)
	if m == nil {
		return Statement{}, false
	}

	return Statement{Dest: m[1], Op: "load"}, true
}

func matchStore(line string) (Statement, bool) {
	m := storePattern.FindStringSubmatch(line)
	if m == nil {
		return Statement{}, false
	}

	return Statement{Op: "store", Operands: []string{symbol(m[1])}}, true
}

func matchBranch(line string) (Statement, bool) {
	if !branchPattern.MatchString(line) {
		return Statement{}, false
	}

	stmt := Statement{Op: "br"}

	if m := branchCondPattern.FindStringSubmatch(line); m != nil {
		stmt.Cond = symbol(m[1])
	}

	for _, m := range branchLabelPattern.FindAllStringSubmatch(line, -1) {
		stmt.Targets = append(stmt.Targets, m[1])
	}

	return stmt, true
}

func symbol(v string) string {
	return strings.TrimPrefix(v, "%")
}
