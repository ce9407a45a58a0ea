package main

import (
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/tribit/config"
	"github.com/ezrec/tribit/emulator"
	"github.com/ezrec/tribit/logging"
	"github.com/ezrec/tribit/translate"
	"github.com/ezrec/tribit/watch"
)

var f = translate.From

var ErrWatchNothing = errors.New(f("--watch needs a --file, --asm or --config file"))

// addMachineFlags adds the flags that select the program and registers.
func addMachineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("program", "", "Comma separated program words")
	flags.StringP("a", "a", "", "Register A")
	flags.StringP("b", "b", "", "Register B")
	flags.StringP("c", "c", "", "Register C")
	flags.String("file", "", "Register dump file")
	flags.String("asm", "", "Assembly source file")
	flags.Int("limit", 0, "Stop after this many instructions (0 is unlimited)")
	flags.String("dialect", "", "bxl operand dialect: combo or literal")
}

// machine returns the configured machine. A program given on the command
// line replaces any configured program.
func (app *session) machine(args []string) (machine *config.Machine, err error) {
	if len(args) != 0 {
		app.cfg.Program = args[0]
		app.cfg.Asm = ""
	}

	return app.cfg.Machine()
}

// emulator builds an emulator for the machine.
func (app *session) emulator(machine *config.Machine, logger *zap.Logger) (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	emu.Verbose = app.cfg.Log.Verbose
	emu.Logger = logger
	emu.Program = machine.Program
	emu.Limit = machine.Limit
	emu.Cpu.Dialect = machine.Dialect

	return
}

// runOnce runs the configured machine, streaming output to the writer.
func (app *session) runOnce(args []string, output io.Writer) (err error) {
	logger, _ := logging.WithRun(app.logger)

	machine, err := app.machine(args)
	if err != nil {
		return
	}

	emu := app.emulator(machine, logger)
	emu.Tape.Output = output

	err = emu.Reset(machine.Register...)
	if err != nil {
		return
	}

	out, err := emu.Run()

	logger.Debug("run: complete",
		zap.Int("ticks", emu.Ticks()),
		zap.Int("values", len(out)),
		zap.Error(err),
	)

	return
}

// watchRun runs the machine, and again each time one of its files changes.
func (app *session) watchRun(cmd *cobra.Command, args []string) (err error) {
	paths := app.cfg.Sources()
	if len(app.configPath) != 0 {
		paths = append(paths, app.configPath)
	}
	if len(paths) == 0 {
		err = ErrWatchNothing
		return
	}

	w, err := watch.New(paths...)
	if err != nil {
		return
	}
	defer w.Close()
	w.Logger = app.logger

	rerun := func() {
		err := app.runOnce(args, cmd.OutOrStdout())
		if err != nil {
			app.logger.Error("run: failed", zap.Error(err))
		}
	}

	rerun()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	app.logger.Info("run: watching", zap.Strings("paths", paths))

	err = w.Run(ctx, func() {
		cfg, err := config.Load(app.configPath, cmd.Flags())
		if err != nil {
			app.logger.Error("run: config", zap.Error(err))
			return
		}
		app.cfg = cfg
		rerun()
	})

	return
}

func newRunCmd(app *session) (cmd *cobra.Command) {
	var watching bool

	cmd = &cobra.Command{
		Use:   "run [program]",
		Short: "Run a program and print its output",
		Long: `Runs a program to completion, printing the emitted values as a
single comma separated line. On a runtime error the values emitted so far
are still printed.`,
		Example: `  tribit run 0,1,5,4,3,0 -a 729
  tribit run --file input.txt
  tribit run --asm quine.s -a 61657405 --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watching {
				return app.watchRun(cmd, args)
			}
			return app.runOnce(args, cmd.OutOrStdout())
		},
	}

	addMachineFlags(cmd)
	cmd.Flags().BoolVar(&watching, "watch", false, "Run again when the program or config file changes")

	return
}
