package lut

import "fmt"

// The literals below are the LUT programs as they are loaded into the cores.
// Validate checks them against the arithmetic they claim to implement.

func multiplyTable() Table {
	return Table{
		Name:        OpMultiply,
		Description: "Multiplication Operation",
		Entries: entries([][3]string{
			{"0000", "0000", "0 × 0 = 0"},
			{"0001", "0000", "0 × 1 = 0"},
			{"0010", "0000", "0 × 2 = 0"},
			{"0011", "0000", "0 × 3 = 0"},
			{"0100", "0000", "1 × 0 = 0"},
			{"0101", "0001", "1 × 1 = 1"},
			{"0110", "0010", "1 × 2 = 2"},
			{"0111", "0011", "1 × 3 = 3"},
			{"1000", "0000", "2 × 0 = 0"},
			{"1001", "0010", "2 × 1 = 2"},
			{"1010", "0100", "2 × 2 = 4"},
			{"1011", "0110", "2 × 3 = 6"},
			{"1100", "0000", "3 × 0 = 0"},
			{"1101", "0011", "3 × 1 = 3"},
			{"1110", "0110", "3 × 2 = 6"},
			{"1111", "1001", "3 × 3 = 9"},
		}),
		apply: func(a, b int) int { return a * b },
	}
}

func addTable() Table {
	return Table{
		Name:        OpAdd,
		Description: "Addition Operation",
		Entries: entries([][3]string{
			{"0000", "0000", "0 + 0 = 0"},
			{"0001", "0001", "0 + 1 = 1"},
			{"0010", "0010", "0 + 2 = 2"},
			{"0011", "0011", "0 + 3 = 3"},
			{"0100", "0001", "1 + 0 = 1"},
			{"0101", "0010", "1 + 1 = 2"},
			{"0110", "0011", "1 + 2 = 3"},
			{"0111", "0100", "1 + 3 = 4"},
			{"1000", "0010", "2 + 0 = 2"},
			{"1001", "0011", "2 + 1 = 3"},
			{"1010", "0100", "2 + 2 = 4"},
			{"1011", "0101", "2 + 3 = 5"},
			{"1100", "0011", "3 + 0 = 3"},
			{"1101", "0100", "3 + 1 = 4"},
			{"1110", "0101", "3 + 2 = 5"},
			{"1111", "0110", "3 + 3 = 6"},
		}),
		apply: func(a, b int) int { return a + b },
	}
}

func entries(rows [][3]string) []Entry {
	es := make([]Entry, 0, len(rows))
	for _, r := range rows {
		es = append(es, Entry{InputPattern: r[0], OutputValue: r[1], Description: r[2]})
	}

	return es
}

// NewTable builds a table from explicit entries. apply is the operation the
// entries are checked against by Validate.
func NewTable(name, desc string, es []Entry, apply func(a, b int) int) Table {
	return Table{
		Name:        name,
		Description: desc,
		Entries:     append([]Entry(nil), es...),
		apply:       apply,
	}
}

func (t Table) String() string {
	return fmt.Sprintf("%s (%s, %d entries)", t.Name, t.Description, len(t.Entries))
}
