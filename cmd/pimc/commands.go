package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sarchlab/lutpim/freq"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
	"github.com/sarchlab/lutpim/pipeline"
	"github.com/sarchlab/lutpim/tac"
	"github.com/sarchlab/lutpim/verify"
)

var translateCommand = &cli.Command{
	Name:      "translate",
	Usage:     "translate IR files to TAC and ISA text",
	ArgsUsage: "<file.ll>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "emit",
			Value: "both",
			Usage: "tac, isa or both",
		},
		&cli.BoolFlag{
			Name:  "table",
			Usage: "print the ISA program as a table",
		},
		outFlag,
	},
	Action: translate,
}

var lutCommand = &cli.Command{
	Name:  "lut",
	Usage: "print the LUT catalog",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Value: "table",
			Usage: "table or yaml",
		},
		outFlag,
	},
	Action: printLUT,
}

var analyzeCommand = &cli.Command{
	Name:      "analyze",
	Usage:     "count opcodes in a source or IR file",
	ArgsUsage: "<file|->",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "json, yaml or text; defaults to the config file",
		},
		outFlag,
	},
	Action: analyze,
}

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "lint an ISA program and replay it on the PIM device",
	ArgsUsage: "<file|->",
	Flags:     []cli.Flag{irFlag, outFlag},
	Action:    verifyProgram,
}

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "encode an ISA program into 24-bit words",
	ArgsUsage: "<file|->",
	Flags: []cli.Flag{
		irFlag,
		&cli.StringFlag{
			Name:  "bin",
			Usage: "write the words as raw bytes to this file",
		},
		outFlag,
	},
	Action: encode,
}

func translate(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("translate: no input files")
	}

	emit := ctx.String("emit")
	if emit != "tac" && emit != "isa" && emit != "both" {
		return fmt.Errorf("translate: unknown --emit %q", emit)
	}

	docs := make([]pipeline.Document, 0, ctx.NArg())
	for _, path := range ctx.Args().Slice() {
		docs = append(docs, pipeline.Document{Name: path, Path: path})
	}

	translator := pipeline.NewBuilder().
		WithSelectorBuilder(cfg.SelectorBuilder()).
		WithWorkers(cfg.Pipeline.Workers).
		Build()

	results, err := translator.TranslateBatch(ctx.Context, docs)
	if err != nil {
		return err
	}

	failed := 0

	err = withOutput(ctx.String(outFlag.Name), func(w io.Writer) error {
		for _, r := range results {
			if r.Err != nil {
				slog.Error("Translation failed", "Document", r.Name, "Error", r.Err)
				failed++

				continue
			}

			if err := writeResult(w, r.Result, emit, ctx.Bool("table")); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("translate: %d of %d documents failed", failed, len(results))
	}

	return nil
}

func writeResult(w io.Writer, res *pipeline.Result, emit string, asTable bool) error {
	for _, sk := range res.ISA.Skipped {
		slog.Warn("TAC line skipped",
			"Document", res.Name,
			"Line", sk.Line,
			"TAC", sk.TAC,
			"Reason", sk.Reason.String(),
			"Detail", sk.Detail,
		)
	}

	if emit != "isa" {
		if _, err := fmt.Fprintf(w, "; TAC of %s\n", res.Name); err != nil {
			return err
		}

		if err := tac.Write(w, res.TAC); err != nil {
			return err
		}
	}

	if emit == "tac" {
		return nil
	}

	if asTable {
		return isa.RenderProgram(w, "ISA of "+res.Name, res.ISA.Program)
	}

	_, err := fmt.Fprintf(w, "; ISA of %s, LUT programs used: %v\n",
		res.Name, res.ISA.OpsUsed.Sorted())
	if err != nil {
		return err
	}

	return isa.Write(w, res.ISA.Program)
}

func printLUT(ctx *cli.Context) error {
	var write func(io.Writer) error

	switch format := ctx.String("format"); format {
	case "table":
		write = lut.Default().Render
	case "yaml":
		write = lut.Default().WriteYAML
	default:
		return fmt.Errorf("lut: unknown --format %q", format)
	}

	return withOutput(ctx.String(outFlag.Name), write)
}

func analyze(ctx *cli.Context) error {
	format := cfg.Report.Format
	if ctx.IsSet("format") {
		format = ctx.String("format")
	}

	f, err := freq.ParseFormat(format)
	if err != nil {
		return err
	}

	text, err := readInput(ctx.Args().First())
	if err != nil {
		return err
	}

	report := freq.BuildReport(string(text))

	return withOutput(ctx.String(outFlag.Name), func(w io.Writer) error {
		return report.Write(w, f)
	})
}

func verifyProgram(ctx *cli.Context) error {
	prog, err := loadProgram(ctx)
	if err != nil {
		return err
	}

	report := verify.GenerateReport(prog, cfg.DeviceBuilder())

	if out := ctx.String(outFlag.Name); out != "" {
		if err := report.SaveReportToFile(out); err != nil {
			return err
		}
	} else {
		report.WriteReport(os.Stdout)
	}

	if !report.Passed() {
		return errors.New("verify: program failed verification")
	}

	return nil
}

func encode(ctx *cli.Context) error {
	prog, err := loadProgram(ctx)
	if err != nil {
		return err
	}

	words, err := isa.EncodeProgram(prog)
	if err != nil {
		return err
	}

	if bin := ctx.String("bin"); bin != "" {
		err := writeFile(bin, func(w io.Writer) error {
			return isa.WriteBinary(w, words)
		})
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}

	return withOutput(ctx.String(outFlag.Name), func(w io.Writer) error {
		for _, word := range words {
			d, err := isa.DecodeWord(word)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(w, "%s  %-4s %-13s %d\n", word, d.Class, d.Mnemonic, d.Operand)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// loadProgram reads the ISA program named by the first argument. With --ir
// the file is translated first.
func loadProgram(ctx *cli.Context) ([]isa.Instruction, error) {
	text, err := readInput(ctx.Args().First())
	if err != nil {
		return nil, err
	}

	if !ctx.Bool(irFlag.Name) {
		return isa.ParseProgram(bytesReader(text))
	}

	res, err := pipeline.NewBuilder().
		WithSelectorBuilder(cfg.SelectorBuilder()).
		Build().
		Translate(bytesReader(text))
	if err != nil {
		return nil, err
	}

	return res.ISA.Program, nil
}
