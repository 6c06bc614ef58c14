package isa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Word is a 24-bit encoded instruction. The top byte is the class, the next
// 6 bits the sub-opcode and the low 10 bits the operand field.
type Word uint32

const (
	operandMask = 0x3FF
	subMask     = 0x3F
	wordBytes   = 3
)

// ErrEncode is returned when an instruction cannot be put into a word.
var ErrEncode = errors.New("cannot encode instruction")

// Class returns the class byte of the word.
func (w Word) Class() Class {
	return Class(w >> 16)
}

// Sub returns the sub-opcode of the word.
func (w Word) Sub() uint8 {
	return uint8(w>>10) & subMask
}

// Operand returns the operand field of the word.
func (w Word) Operand() uint16 {
	return uint16(w) & operandMask
}

func (w Word) String() string {
	return fmt.Sprintf("0x%06X", uint32(w))
}

func makeWord(class Class, sub uint8, operand int) Word {
	return Word(uint32(class)<<16 | uint32(sub&subMask)<<10 | uint32(operand&operandMask))
}

// Decoded is the field view of a word.
type Decoded struct {
	Class    Class
	Mnemonic string
	Operand  uint16
}

// DecodeWord splits a word into its fields.
func DecodeWord(w Word) (Decoded, error) {
	f, ok := describeCode(w.Class(), w.Sub())
	if !ok {
		return Decoded{}, fmt.Errorf("decode %s: unknown class %#x sub %#x",
			w, uint8(w.Class()), w.Sub())
	}

	return Decoded{Class: f.Class, Mnemonic: f.Mnemonic, Operand: w.Operand()}, nil
}

// encoder assigns dense indices to branch labels in order of first use.
type encoder struct {
	labels map[string]int
}

func newEncoder() *encoder {
	return &encoder{labels: make(map[string]int)}
}

// Encode converts a single instruction. Branch labels are numbered from 0 in
// the order they appear in inst.
func Encode(inst Instruction) (Word, error) {
	return newEncoder().encode(inst)
}

// EncodeProgram converts a program and appends the END word. Branch labels
// share one numbering across the whole program.
func EncodeProgram(prog []Instruction) ([]Word, error) {
	enc := newEncoder()
	words := make([]Word, 0, len(prog)+1)

	for i, inst := range prog {
		w, err := enc.encode(inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}

		words = append(words, w)
	}

	return append(words, makeWord(ClassEnd, 0, 0)), nil
}

func (e *encoder) encode(inst Instruction) (Word, error) {
	f, ok := Describe(inst.Mnemonic)
	if !ok {
		return 0, fmt.Errorf("%w: unknown mnemonic %q", ErrEncode, inst.Mnemonic)
	}

	if len(inst.Operands) != f.Operands {
		return 0, fmt.Errorf("%w: %s takes %d operands, got %d",
			ErrEncode, f.Mnemonic, f.Operands, len(inst.Operands))
	}

	operand, err := e.operand(f, inst.Operands)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrEncode, inst, err)
	}

	return makeWord(f.Class, f.Sub, operand), nil
}

func (e *encoder) operand(f Format, ops []string) (int, error) {
	switch f.Class {
	case ClassMem:
		// Rows wrap at the 10-bit address space.
		return parseInt(ops[0])
	case ClassExe:
		if len(ops) == 0 {
			return 0, nil
		}

		return parseInt(ops[0])
	case ClassProg:
		return progOperand(ops[0], ops[1])
	case ClassCtrl:
		return e.ctrlOperand(f, ops)
	default:
		return 0, nil
	}
}

// progOperand packs the 4-bit core mask above the 6 high bits of the
// config byte. The low 2 bits of the config must be zero.
func progOperand(maskText, configText string) (int, error) {
	mask, err := parseInt(maskText)
	if err != nil {
		return 0, err
	}

	config, err := parseInt(configText)
	if err != nil {
		return 0, err
	}

	if mask < 0 || mask > 0xF {
		return 0, fmt.Errorf("core mask %s does not fit in 4 bits", maskText)
	}

	if config < 0 || config > 0xFF || config&0x3 != 0 {
		return 0, fmt.Errorf("config %s is not a multiple of 4 below 0x100", configText)
	}

	return mask<<6 | config>>2, nil
}

// ctrlOperand holds one 10-bit label index for JUMP, and the true and false
// label indices in 5 bits each for BRANCH. The condition is the flag set by
// the preceding COMPARE and is not encoded.
func (e *encoder) ctrlOperand(f Format, ops []string) (int, error) {
	if f.Mnemonic == Jump {
		idx := e.label(ops[0])
		if idx > operandMask {
			return 0, errors.New("too many labels")
		}

		return idx, nil
	}

	t, fl := e.label(ops[1]), e.label(ops[2])
	if t > 0x1F || fl > 0x1F {
		return 0, errors.New("branch label index above 31")
	}

	return t<<5 | fl, nil
}

func (e *encoder) label(name string) int {
	if idx, ok := e.labels[name]; ok {
		return idx
	}

	idx := len(e.labels)
	e.labels[name] = idx

	return idx
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("operand %q is not a number", s)
	}

	return int(v), nil
}

// WriteBinary writes each word as 3 big-endian bytes.
func WriteBinary(w io.Writer, words []Word) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, wordBytes)

	for _, word := range words {
		buf[0] = byte(word >> 16)
		buf[1] = byte(word >> 8)
		buf[2] = byte(word)

		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write ISA binary: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ISA binary: %w", err)
	}

	return nil
}

// ReadBinary reads words written by WriteBinary.
func ReadBinary(r io.Reader) ([]Word, error) {
	var words []Word

	br := bufio.NewReader(r)
	buf := make([]byte, wordBytes)

	for {
		_, err := io.ReadFull(br, buf)
		if errors.Is(err, io.EOF) {
			return words, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read ISA binary: %w", err)
		}

		words = append(words, Word(uint32(buf[0])<<16|uint32(buf[1])<<8|uint32(buf[2])))
	}
}
