// Command pimc lowers IR text to the instruction set of the LUT-based PIM
// device and inspects the result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"
	"github.com/urfave/cli/v2"

	"github.com/sarchlab/lutpim/config"
	"github.com/sarchlab/lutpim/pimlog"
)

var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML configuration file",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "error, warn, info, trace or debug; overrides the config file",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "json or text; overrides the config file",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "write the log to a file instead of stderr",
	}
	outFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "write the output to a file instead of stdout",
	}
	irFlag = &cli.BoolFlag{
		Name:  "ir",
		Usage: "the input is IR text to translate first, not ISA text",
	}
)

// cfg is loaded before any command runs.
var cfg *config.Config

func newApp() *cli.App {
	return &cli.App{
		Name:  "pimc",
		Usage: "lower IR to LUT-based PIM instructions",
		Flags: []cli.Flag{
			configFlag,
			logLevelFlag,
			logFormatFlag,
			logFileFlag,
		},
		Before: setup,
		Commands: []*cli.Command{
			translateCommand,
			lutCommand,
			analyzeCommand,
			verifyCommand,
			encodeCommand,
		},
	}
}

// setup loads the configuration and installs the logger.
func setup(ctx *cli.Context) error {
	var err error

	cfg, err = config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}

	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = ctx.String(logFormatFlag.Name)
	}

	if ctx.IsSet(logFileFlag.Name) {
		cfg.Log.File = ctx.String(logFileFlag.Name)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return setupLogger(cfg.Log)
}

func setupLogger(lc config.LogConfig) error {
	level, err := pimlog.ParseLevel(lc.Level)
	if err != nil {
		return err
	}

	out := os.Stderr

	if lc.File != "" {
		logFile, err := os.Create(lc.File)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}

		atexit.Register(func() { logFile.Close() })

		out = logFile
	}

	handler, err := pimlog.NewHandler(out, lc.Format, level)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pimc:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
