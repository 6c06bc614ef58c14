package isa_test

import (
	"errors"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/lutpim/ir"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
	"github.com/sarchlab/lutpim/tac"
)

func mnemonics(prog []isa.Instruction) []string {
	ms := make([]string, 0, len(prog))
	for _, inst := range prog {
		ms = append(ms, inst.Mnemonic)
	}

	return ms
}

var _ = Describe("Selector", func() {
	var s *isa.Selector

	BeforeEach(func() {
		s = isa.NewSelectorBuilder().Build("Selector")
	})

	It("should start with the activation of row 0", func() {
		out := s.Output()

		Expect(out.Program).To(HaveLen(1))
		Expect(out.Program[0].String()).To(Equal("ACTIVATE 0  ; Activate row buffer"))
		Expect(out.FinalRow).To(Equal(0))
		Expect(out.OpsUsed).To(BeEmpty())
	})

	It("should activate the configured initial row", func() {
		s = isa.NewSelectorBuilder().WithInitialRow(8).Build("Selector")
		out := s.Select([]string{"1 = LOAD"})

		Expect(out.Program[0].Operands).To(Equal([]string{"8"}))
		Expect(out.Program[1].Operands).To(Equal([]string{"9"}))
		Expect(out.FinalRow).To(Equal(9))
	})

	It("should lower mul into a two-phase multiply-accumulate", func() {
		out := s.Select([]string{"3 = mul a, b"})

		Expect(mnemonics(out.Program)).To(Equal([]string{
			"ACTIVATE",
			"LUT_PROG_MULT", "LUT_PROG_ADD",
			"MAC_MULT", "MAC_ADD", "MAC_MULT", "MAC_ADD",
			"STORE",
		}))
		Expect(out.Program[1].String()).
			To(Equal("LUT_PROG_MULT 0x3, 0x40  ; Program cores 0-1 for 4-bit mult"))
		Expect(out.Program[2].Operands).To(Equal([]string{"0xC", "0x80"}))
		Expect(out.Program[7].Operands).To(Equal([]string{"1"}))
		Expect(out.OpsUsed.Sorted()).To(Equal([]string{lut.OpMultiply, lut.OpAdd}))
		Expect(out.FinalRow).To(Equal(1))
	})

	// By default only mul, load and store move the row. WithRowAdvanceOnAdd
	// makes add move it too, so "add, LOAD" gives LOAD 1 by default and
	// LOAD 2 with the option.
	It("should lower add without moving the row", func() {
		out := s.Select([]string{"1 = add a, b"})

		Expect(out.Program[1:]).To(Equal([]isa.Instruction{
			{Mnemonic: "LUT_PROG_ADD", Operands: []string{"0xF", "0x80"},
				Comment: "Program all cores for addition"},
			{Mnemonic: "MAC_ADD", Operands: []string{"0"}, Comment: "Execute addition"},
		}))
		Expect(out.OpsUsed.Has(lut.OpAdd)).To(BeTrue())
		Expect(out.OpsUsed.Has(lut.OpMultiply)).To(BeFalse())
		Expect(out.FinalRow).To(Equal(0))

		out = isa.NewSelectorBuilder().Build("Selector").Select([]string{"1 = add a, b", "2 = LOAD"})
		Expect(out.Program[3].String()).To(Equal("LOAD 1  ; Load from row 1"))
		Expect(out.FinalRow).To(Equal(1))
	})

	It("should move the row on add when configured", func() {
		s = isa.NewSelectorBuilder().WithRowAdvanceOnAdd(true).Build("Selector")
		out := s.Select([]string{"1 = add a, b", "2 = LOAD"})

		Expect(out.Program[3].Operands).To(Equal([]string{"2"}))
		Expect(out.FinalRow).To(Equal(2))
	})

	It("should lower load and store at the next row", func() {
		out := s.Select([]string{"2 = LOAD", "STORE 2"})

		Expect(out.Program[1].String()).To(Equal("LOAD 1  ; Load from row 1"))
		Expect(out.Program[2].String()).To(Equal("STORE 2  ; Store to row 2"))
		Expect(out.FinalRow).To(Equal(2))
	})

	It("should lower compares", func() {
		out := s.Select([]string{"4 = icmp slt a, b"})

		Expect(mnemonics(out.Program)).To(Equal([]string{"ACTIVATE", "LUT_PROG_CMP", "COMPARE"}))
		Expect(out.Program[1].Operands).To(Equal([]string{"0xF", "0xC0"}))
		Expect(out.OpsUsed.Has(isa.CMP)).To(BeTrue())
		Expect(out.FinalRow).To(Equal(0))
	})

	It("should lower conditional and unconditional branches", func() {
		out := s.Select([]string{
			"BRANCH 4, 5, 6  ; br i1 %4, label %5, label %6",
			"BRANCH 7  ; br label %7",
		})

		Expect(out.Program[1].String()).To(Equal("BRANCH 4, 5, 6"))
		Expect(out.Program[2].String()).To(Equal("JUMP 7"))
		Expect(out.Skipped).To(BeEmpty())
	})

	It("should skip a branch without operands and continue", func() {
		out := s.Select([]string{"2 = LOAD", "BRANCH  ; br label", "STORE x"})

		Expect(mnemonics(out.Program)).To(Equal([]string{"ACTIVATE", "LOAD", "STORE"}))
		Expect(out.Skipped).To(HaveLen(1))
		Expect(out.Skipped[0].Line).To(Equal(2))
		Expect(out.Skipped[0].Reason).To(Equal(isa.Malformed))
		Expect(out.Skipped[0].TAC).To(Equal("BRANCH  ; br label"))
		Expect(out.FinalRow).To(Equal(2))
	})

	It("should skip a two-operand branch", func() {
		_, err := s.Lower("BRANCH 4, 5")

		Expect(errors.Is(err, isa.ErrMalformed)).To(BeTrue())
	})

	It("should skip unsupported operators without touching state", func() {
		frag, err := s.Lower("5 = sub a, b")

		Expect(frag).To(BeNil())
		Expect(errors.Is(err, isa.ErrUnsupported)).To(BeTrue())

		var skipErr *isa.SkipError
		Expect(errors.As(err, &skipErr)).To(BeTrue())
		Expect(skipErr.Skip.Reason).To(Equal(isa.Unsupported))

		out := s.Output()
		Expect(out.Program).To(HaveLen(1))
		Expect(out.OpsUsed).To(BeEmpty())
		Expect(out.FinalRow).To(Equal(0))
	})

	It("should skip a mul with one operand without touching state", func() {
		_, err := s.Lower("3 = mul a")

		Expect(errors.Is(err, isa.ErrMalformed)).To(BeTrue())
		Expect(s.Row()).To(Equal(0))
		Expect(s.Output().OpsUsed).To(BeEmpty())
	})

	It("should ignore blank lines", func() {
		frag, err := s.Lower("   ")

		Expect(frag).To(BeNil())
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Output().Skipped).To(BeEmpty())
	})

	It("should move the row only on mul, load and store", func() {
		steps := []struct {
			line    string
			advance bool
		}{
			{"1 = add a, b", false},
			{"2 = LOAD", true},
			{"3 = mul 1, 2", true},
			{"4 = icmp eq 3, 1", false},
			{"BRANCH 4, 5, 6", false},
			{"5 = xor a, b", false},
			{"STORE 3", true},
			{"BRANCH", false},
			{"6 = add 3, 3", false},
		}

		for _, step := range steps {
			prev := s.Row()
			_, _ = s.Lower(step.line)

			if step.advance {
				Expect(s.Row()).To(Equal(prev+1), step.line)
			} else {
				Expect(s.Row()).To(Equal(prev), step.line)
			}
		}
	})

	It("should not share state between selectors", func() {
		a := isa.NewSelectorBuilder().Build("A")
		b := isa.NewSelectorBuilder().Build("B")

		a.Select([]string{"1 = LOAD", "2 = LOAD"})
		out := b.Select([]string{"1 = LOAD"})

		Expect(out.FinalRow).To(Equal(1))
		Expect(a.Row()).To(Equal(2))
	})

	It("should return snapshots", func() {
		out := s.Select([]string{"1 = add a, b"})
		out.OpsUsed.Add(isa.CMP)
		out.Program[0].Mnemonic = "NOP"

		Expect(s.Output().OpsUsed.Has(isa.CMP)).To(BeFalse())
		Expect(s.Output().Program[0].Mnemonic).To(Equal("ACTIVATE"))
	})
})

var _ = Describe("Selector end to end", func() {
	translate := func(irText string) ([]string, isa.Output) {
		lines := tac.Render(tac.Build(ir.ClassifyAll(irText)))
		s := isa.NewSelectorBuilder().Build("Selector")

		return lines, s.Select(lines)
	}

	It("should lower an add", func() {
		lines, out := translate("%1 = add i32 %a, %b")

		Expect(lines).To(Equal([]string{"1 = add a, b"}))
		Expect(mnemonics(out.Program)).To(ContainElement("LUT_PROG_ADD"))
		Expect(mnemonics(out.Program)).To(HaveLen(3))
		Expect(out.Program[2].Mnemonic).To(Equal("MAC_ADD"))
		Expect(out.OpsUsed.Has(lut.OpAdd)).To(BeTrue())
	})

	It("should lower a load", func() {
		lines, out := translate("%2 = load i32, i32* %p")

		Expect(lines).To(Equal([]string{"2 = LOAD"}))
		Expect(out.Program).To(HaveLen(2))
		Expect(out.Program[1].Mnemonic).To(Equal("LOAD"))
		Expect(out.Program[1].Operands).To(Equal([]string{"1"}))
	})

	It("should lower branches built from IR", func() {
		_, out := translate(`
  %4 = icmp slt i32 %a, %b
  br i1 %4, label %5, label %6
  br label %7
`)

		Expect(mnemonics(out.Program)).
			To(Equal([]string{"ACTIVATE", "LUT_PROG_CMP", "COMPARE", "BRANCH", "JUMP"}))
		Expect(out.Program[3].Operands).To(Equal([]string{"4", "5", "6"}))
		Expect(out.Program[4].Operands).To(Equal([]string{"7"}))
	})

	It("should accept built TAC directly", func() {
		insts := tac.Build(ir.ClassifyAll("%3 = mul nsw i32 %1, %2"))
		out := isa.NewSelectorBuilder().Build("Selector").SelectInstructions(insts)

		Expect(out.FinalRow).To(Equal(1))
	})
})

var _ = Describe("Selector hooks", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		s        *isa.Selector
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		s = isa.NewSelectorBuilder().WithHook(hook).Build("Selector")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report lowered instructions", func() {
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx sim.HookCtx) {
				Expect(ctx.Pos).To(Equal(isa.HookPosInstLowered))
				Expect(ctx.Domain).To(BeIdenticalTo(s))

				l := ctx.Item.(isa.Lowering)
				Expect(l.Line).To(Equal(1))
				Expect(l.Op).To(Equal(isa.OpLoad))
				Expect(l.Row).To(Equal(1))
				Expect(l.Fragment).To(HaveLen(1))
			})

		_, err := s.Lower("2 = LOAD")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should report skipped instructions", func() {
		hook.EXPECT().
			Func(gomock.Any()).
			Do(func(ctx sim.HookCtx) {
				Expect(ctx.Pos).To(Equal(isa.HookPosInstSkipped))

				sk := ctx.Item.(isa.Skip)
				Expect(sk.Reason).To(Equal(isa.Unsupported))
				Expect(sk.TAC).To(Equal("1 = or a, b"))
			})

		_, err := s.Lower("1 = or a, b")
		Expect(err).To(HaveOccurred())
	})
})
