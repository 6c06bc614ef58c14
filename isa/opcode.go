package isa

import "strings"

// Op is a TAC operator the selector knows how to lower.
type Op int

const (
	OpUnsupported Op = iota
	OpMul
	OpAdd
	OpLoad
	OpStore
	OpCompare
	OpBranch
)

func (o Op) String() string {
	switch o {
	case OpMul:
		return "mul"
	case OpAdd:
		return "add"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpCompare:
		return "icmp"
	case OpBranch:
		return "branch"
	default:
		return "unsupported"
	}
}

// DecodeOp maps a lower-cased TAC operator to an Op.
func DecodeOp(operator string) Op {
	switch {
	case operator == "mul":
		return OpMul
	case operator == "add":
		return OpAdd
	case operator == "load":
		return OpLoad
	case operator == "store":
		return OpStore
	case strings.HasPrefix(operator, "icmp"):
		return OpCompare
	case operator == "branch":
		return OpBranch
	default:
		return OpUnsupported
	}
}

// minOperands is the shortest operand list each op can be lowered from.
// Compare operands are the predicate followed by the two values.
func (o Op) minOperands() int {
	switch o {
	case OpMul, OpAdd:
		return 2
	case OpStore, OpBranch:
		return 1
	case OpCompare:
		return 3
	default:
		return 0
	}
}

// Class is the top byte of an encoded instruction.
type Class uint8

const (
	ClassProg Class = 0x01
	ClassExe  Class = 0x02
	ClassEnd  Class = 0x03
	ClassMem  Class = 0x04
	ClassCtrl Class = 0x05
)

func (c Class) String() string {
	switch c {
	case ClassProg:
		return "PROG"
	case ClassExe:
		return "EXE"
	case ClassEnd:
		return "END"
	case ClassMem:
		return "MEM"
	case ClassCtrl:
		return "CTRL"
	default:
		return "UNKNOWN"
	}
}

// Format describes how a mnemonic is checked and encoded.
type Format struct {
	Mnemonic string
	Class    Class
	Sub      uint8
	Operands int
}

var formats = []Format{
	{Activate, ClassMem, 0x01, 1},
	{Load, ClassMem, 0x02, 1},
	{Store, ClassMem, 0x03, 1},
	{LUTProgMult, ClassProg, 0x01, 2},
	{LUTProgAdd, ClassProg, 0x02, 2},
	{LUTProgCmp, ClassProg, 0x03, 2},
	{MACMult, ClassExe, 0x01, 1},
	{MACAdd, ClassExe, 0x02, 1},
	{Compare, ClassExe, 0x03, 0},
	{Branch, ClassCtrl, 0x01, 3},
	{Jump, ClassCtrl, 0x02, 1},
	{End, ClassEnd, 0x00, 0},
}

// Describe returns the format of a mnemonic.
func Describe(mnemonic string) (Format, bool) {
	for _, f := range formats {
		if f.Mnemonic == mnemonic {
			return f, true
		}
	}

	return Format{}, false
}

func describeCode(class Class, sub uint8) (Format, bool) {
	for _, f := range formats {
		if f.Class == class && f.Sub == sub {
			return f, true
		}
	}

	return Format{}, false
}
