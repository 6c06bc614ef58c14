// Package ir recognizes the handful of textual IR statement shapes that the
// PIM backend knows how to lower.
//
// Recognition is best effort. A line is tested against an ordered list of
// shapes and the first one that matches wins. Lines that match no shape are
// dropped; they are not errors.
package ir

// Kind is the shape of a recognized statement.
type Kind int

const (
	BinaryOp Kind = iota
	Compare
	Load
	Store
	Branch
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case BinaryOp:
		return "BinaryOp"
	case Compare:
		return "Compare"
	case Load:
		return "Load"
	case Store:
		return "Store"
	case Branch:
		return "Branch"
	default:
		return "Unknown"
	}
}

// Statement is one recognized IR line. Symbol names are stored without the
// leading '%'.
type Statement struct {
	Kind Kind

	// Dest is the assigned value. Empty for stores and branches.
	Dest string

	// Op is the binary operator name (add, mul, ...) or "icmp".
	Op string

	// Predicate is the icmp condition code (eq, slt, ...).
	Predicate string

	// Operands are the source values of binary ops, compares and stores.
	Operands []string

	// Cond is the i1 condition of a conditional branch.
	Cond string

	// Targets are the labels a branch may transfer control to.
	Targets []string

	// Raw is the trimmed source line.
	Raw string
}

// IsConditional reports whether the statement is a two-way branch.
func (s Statement) IsConditional() bool {
	return s.Kind == Branch && s.Cond != ""
}
