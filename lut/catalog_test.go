package lut_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/lutpim/lut"
)

func allPatterns() []string {
	ps := make([]string, 0, 16)
	for v := 0; v < 16; v++ {
		ps = append(ps, lut.Nibble(v))
	}

	return ps
}

var _ = Describe("Catalog", func() {
	var catalog *lut.Catalog

	BeforeEach(func() {
		catalog = lut.Default()
	})

	It("should hold OP_A and OP_B", func() {
		_, ok := catalog.Table(lut.OpMultiply)
		Expect(ok).To(BeTrue())

		_, ok = catalog.Table(lut.OpAdd)
		Expect(ok).To(BeTrue())

		Expect(catalog.Tables).To(HaveLen(2))
	})

	It("should cover every pattern exactly once", func() {
		for _, t := range catalog.Tables {
			var inputs []string
			for _, e := range t.Entries {
				inputs = append(inputs, e.InputPattern)
			}

			Expect(inputs).To(ConsistOf(allPatterns()), t.Name)
		}
	})

	It("should validate", func() {
		Expect(catalog.Validate()).To(Succeed())
	})

	DescribeTable("entries",
		func(name, input, output string) {
			t, _ := catalog.Table(name)

			var found *lut.Entry
			for i := range t.Entries {
				if t.Entries[i].InputPattern == input {
					found = &t.Entries[i]
				}
			}

			Expect(found).NotTo(BeNil())
			Expect(found.OutputValue).To(Equal(output))
		},
		Entry("2 x 3", lut.OpMultiply, "1011", "0110"),
		Entry("2 x 2", lut.OpMultiply, "1010", "0100"),
		Entry("3 x 3", lut.OpMultiply, "1111", "1001"),
		Entry("3 + 1", lut.OpAdd, "1101", "0100"),
		Entry("3 + 3", lut.OpAdd, "1111", "0110"),
		Entry("0 + 0", lut.OpAdd, "0000", "0000"),
	)

	It("should look up by operands", func() {
		v, err := lut.Lookup(lut.OpMultiply, 2, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(6))

		v, err = lut.Lookup(lut.OpAdd, 3, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(4))
	})

	It("should reject operands wider than 2 bits", func() {
		_, err := lut.Lookup(lut.OpAdd, 4, 0)
		Expect(errors.Is(err, lut.ErrOperandRange)).To(BeTrue())
	})

	It("should reject unknown tables", func() {
		_, err := lut.Lookup("OP_Z", 1, 1)
		Expect(errors.Is(err, lut.ErrUnknownTable)).To(BeTrue())
	})

	It("should decode patterns with the first operand in the high pair", func() {
		a, b, err := lut.Decode("1101")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(3))
		Expect(b).To(Equal(1))

		_, _, err = lut.Decode("11x1")
		Expect(err).To(HaveOccurred())
	})

	It("should export as YAML", func() {
		buf := new(bytes.Buffer)
		Expect(catalog.WriteYAML(buf)).To(Succeed())

		var back lut.Catalog
		Expect(yaml.Unmarshal(buf.Bytes(), &back)).To(Succeed())
		Expect(back.Tables).To(HaveLen(2))
		Expect(back.Tables[0].Name).To(Equal(lut.OpMultiply))
		Expect(back.Tables[0].Entries).To(Equal(catalog.Tables[0].Entries))
	})

	It("should render a table view", func() {
		buf := new(bytes.Buffer)
		t, _ := catalog.Table(lut.OpMultiply)

		Expect(t.Render(buf)).To(Succeed())
		Expect(buf.String()).To(HavePrefix(lut.OpMultiply + ": " + t.Description + "\n"))
		Expect(buf.String()).To(ContainSubstring("Multiplication Operation"))
		Expect(buf.String()).To(ContainSubstring("2 × 3 = 6"))
	})
})

var _ = Describe("Table.Validate", func() {
	mul := func(a, b int) int { return a * b }

	entriesFor := func(f func(a, b int) int) []lut.Entry {
		var es []lut.Entry
		for a := 0; a < 4; a++ {
			for b := 0; b < 4; b++ {
				es = append(es, lut.Entry{
					InputPattern: lut.Pattern(a, b),
					OutputValue:  lut.Nibble(f(a, b)),
				})
			}
		}

		return es
	}

	It("should accept a correct table", func() {
		t := lut.NewTable("T", "test", entriesFor(mul), mul)
		Expect(t.Validate()).To(Succeed())
	})

	It("should reject a missing pattern", func() {
		t := lut.NewTable("T", "test", entriesFor(mul)[1:], mul)
		Expect(errors.Is(t.Validate(), lut.ErrIncomplete)).To(BeTrue())
	})

	It("should reject a duplicated pattern", func() {
		es := entriesFor(mul)
		es[1].InputPattern = es[0].InputPattern

		t := lut.NewTable("T", "test", es, mul)
		Expect(errors.Is(t.Validate(), lut.ErrIncomplete)).To(BeTrue())
	})

	It("should reject a wrong output", func() {
		es := entriesFor(mul)
		es[11].OutputValue = "0111"

		t := lut.NewTable("T", "test", es, mul)
		Expect(errors.Is(t.Validate(), lut.ErrIncorrect)).To(BeTrue())
	})
})
