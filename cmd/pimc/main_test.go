package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
	"github.com/sarchlab/lutpim/pipeline"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

const sampleIR = `define i32 @f(i32 %a, i32 %b, i32* %p) {
entry:
  %1 = add nsw i32 %a, %b
  %2 = load i32, i32* %p, align 4
  %3 = mul nsw i32 %1, %2
  %4 = icmp slt i32 %3, %a
  br i1 %4, label %5, label %6
  store i32 %3, i32* %p, align 4
  br label %6
  ret i32 %3
}
`

var _ = Describe("pimc", func() {
	var (
		dir    string
		irPath string
	)

	run := func(args ...string) error {
		return newApp().Run(append([]string{"pimc", "--log-level", "error"}, args...))
	}

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		Expect(err).NotTo(HaveOccurred())

		return string(data)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		irPath = filepath.Join(dir, "f.ll")
		Expect(os.WriteFile(irPath, []byte(sampleIR), 0o644)).To(Succeed())
	})

	It("should translate IR files", func() {
		out := filepath.Join(dir, "out.txt")

		Expect(run("translate", "-o", out, irPath)).To(Succeed())

		text := read("out.txt")
		Expect(text).To(ContainSubstring("1 = add a, b"))
		Expect(text).To(ContainSubstring("ACTIVATE 0  ; Activate row buffer"))
		Expect(text).To(ContainSubstring("BRANCH 4, 5, 6"))
		Expect(text).To(ContainSubstring("JUMP 6"))
	})

	It("should emit only TAC", func() {
		out := filepath.Join(dir, "out.txt")

		Expect(run("translate", "--emit", "tac", "-o", out, irPath)).To(Succeed())
		Expect(read("out.txt")).NotTo(ContainSubstring("ACTIVATE"))
	})

	It("should fail when an input is missing", func() {
		err := run("translate", "-o", filepath.Join(dir, "out.txt"),
			filepath.Join(dir, "nope.ll"))

		Expect(err).To(MatchError(ContainSubstring("1 of 1 documents failed")))
	})

	It("should reject an unknown emit mode", func() {
		Expect(run("translate", "--emit", "asm", irPath)).NotTo(Succeed())
	})

	It("should export the LUT catalog as YAML", func() {
		out := filepath.Join(dir, "lut.yaml")

		Expect(run("lut", "--format", "yaml", "-o", out)).To(Succeed())

		text := read("lut.yaml")
		Expect(text).To(ContainSubstring(lut.OpMultiply))
		Expect(text).To(ContainSubstring(lut.OpAdd))
		Expect(text).To(ContainSubstring("input_pattern: \"1011\""))
	})

	It("should analyze opcode frequency", func() {
		out := filepath.Join(dir, "freq.json")

		Expect(run("analyze", "-o", out, irPath)).To(Succeed())

		text := read("freq.json")
		Expect(text).To(ContainSubstring(`"Operation Frequency"`))
		Expect(text).To(ContainSubstring(`"mul": 1`))
	})

	It("should verify a translated program", func() {
		out := filepath.Join(dir, "report.txt")

		Expect(run("verify", "--ir", "-o", out, irPath)).To(Succeed())
		Expect(read("report.txt")).To(ContainSubstring("PROGRAM PASSED ALL CHECKS"))
	})

	It("should fail verification of a program without activation", func() {
		prog := filepath.Join(dir, "bad.isa")
		Expect(os.WriteFile(prog, []byte("STORE 1\n"), 0o644)).To(Succeed())

		err := run("verify", "-o", filepath.Join(dir, "report.txt"), prog)

		Expect(err).To(MatchError(ContainSubstring("failed verification")))
	})

	It("should encode a program to binary", func() {
		bin := filepath.Join(dir, "f.bin")
		out := filepath.Join(dir, "words.txt")

		Expect(run("encode", "--ir", "--bin", bin, "-o", out, irPath)).To(Succeed())

		f, err := os.Open(bin)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		words, err := isa.ReadBinary(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(words).NotTo(BeEmpty())
		Expect(words[len(words)-1].Class()).To(Equal(isa.ClassEnd))
		Expect(read("words.txt")).To(ContainSubstring("END"))
	})

	It("should reject an invalid log level", func() {
		err := newApp().Run([]string{"pimc", "--log-level", "loud", "lut"})
		Expect(err).To(HaveOccurred())
	})

	It("should report write errors on the output", func() {
		res, err := pipeline.Translate(strings.NewReader(sampleIR))
		Expect(err).NotTo(HaveOccurred())

		for _, emit := range []string{"tac", "isa", "both"} {
			Expect(writeResult(failingWriter{}, res, emit, false)).
				To(MatchError(ContainSubstring("disk full")))
		}
	})

	It("should report output files that cannot be created", func() {
		err := run("encode", "--ir", "--bin", filepath.Join(dir, "missing", "f.bin"), irPath)
		Expect(err).To(MatchError(ContainSubstring("encode")))

		err = run("lut", "-o", filepath.Join(dir, "missing", "lut.txt"))
		Expect(err).To(MatchError(ContainSubstring("creating output")))
	})

	It("should pass write errors through writeFile", func() {
		path := filepath.Join(dir, "out.txt")

		err := writeFile(path, func(w io.Writer) error {
			_, err := w.Write([]byte("partial"))
			Expect(err).NotTo(HaveOccurred())

			return errors.New("encoder broke")
		})

		Expect(err).To(MatchError("encoder broke"))
	})
})
