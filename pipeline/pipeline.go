// Package pipeline drives one IR document through classification, TAC
// construction and instruction selection.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/lutpim/ir"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/pimlog"
	"github.com/sarchlab/lutpim/tac"
)

// ErrMissingInput means the IR of a document could not be read. No TAC is
// produced for such a document.
var ErrMissingInput = errors.New("missing input IR")

// Result is the translation of one document.
type Result struct {
	Name       string
	Statements []ir.Statement
	TAC        []tac.Instruction
	ISA        isa.Output
}

// TACLines returns the TAC text, one instruction per element.
func (r *Result) TACLines() []string {
	return tac.Render(r.TAC)
}

// Builder creates translators.
type Builder struct {
	selector isa.SelectorBuilder
	workers  int
}

// NewBuilder returns a builder with default selector settings and 4 batch
// workers.
func NewBuilder() Builder {
	return Builder{
		selector: isa.NewSelectorBuilder(),
		workers:  4,
	}
}

// WithSelectorBuilder sets how the per-document selectors are built.
func (b Builder) WithSelectorBuilder(sb isa.SelectorBuilder) Builder {
	b.selector = sb
	return b
}

// WithWorkers sets how many documents a batch translates at once. Values
// below 1 mean 1.
func (b Builder) WithWorkers(n int) Builder {
	b.workers = max(n, 1)
	return b
}

// Build creates a translator.
func (b Builder) Build() *Translator {
	return &Translator{selector: b.selector, workers: b.workers}
}

// Translator translates IR documents. It holds no per-document state and
// can be shared by goroutines.
type Translator struct {
	selector isa.SelectorBuilder
	workers  int
}

// Translate translates one document with the default settings.
func Translate(r io.Reader) (*Result, error) {
	return NewBuilder().Build().Translate(r)
}

// TranslateFile translates the IR file at path with the default settings.
func TranslateFile(path string) (*Result, error) {
	return NewBuilder().Build().TranslateFile(path)
}

// Translate reads a whole document and translates it with a fresh selector.
func (t *Translator) Translate(r io.Reader) (*Result, error) {
	return t.translate("document", r)
}

// TranslateFile translates the IR file at path.
func (t *Translator) TranslateFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, missing(path, err)
	}
	defer f.Close()

	return t.translate(path, f)
}

func (t *Translator) translate(name string, r io.Reader) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s has no reader", ErrMissingInput, name)
	}

	// The whole input is read before anything is classified, so a read
	// failure never leaves a partial translation behind.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, missing(name, err)
	}

	stmts, err := ir.Scan(bytes.NewReader(data))
	if err != nil {
		return nil, missing(name, err)
	}

	insts := tac.Build(stmts)
	out := t.selector.Build(name + ".Selector").SelectInstructions(insts)

	pimlog.Trace("Pipeline",
		"Behavior", "Translate",
		"Document", name,
		"Statements", len(stmts),
		"ISA", len(out.Program),
		"Skipped", len(out.Skipped),
		"FinalRow", out.FinalRow,
	)

	return &Result{
		Name:       name,
		Statements: stmts,
		TAC:        insts,
		ISA:        out,
	}, nil
}

func missing(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMissingInput, name, err)
}
