package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/debugger"
)

func newAsmCmd(app *session) (cmd *cobra.Command) {
	var listing bool

	cmd = &cobra.Command{
		Use:   "asm <source>",
		Short: "Assemble a source file into program words",
		Long: `Assembles mnemonics (adv bxl bst jnz bxc out bdv cdv), labels,
.equ constants, .word data and $(expr) expressions into program words.
A source of "-" reads standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var input io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				var inf *os.File
				inf, err = os.Open(args[0])
				if err != nil {
					return
				}
				defer inf.Close()
				input = inf
			}

			asm := &cpu.Assembler{
				Verbose: app.cfg.Log.Verbose,
				Logger:  app.logger,
			}
			prog, err := asm.Parse(input)
			if err != nil {
				return
			}

			app.logger.Debug("asm: assembled",
				zap.Int("words", prog.Len()),
				zap.Int("labels", len(asm.Label)),
			)

			out := cmd.OutOrStdout()
			if !listing {
				fmt.Fprintf(out, "%v\n", prog)
				return
			}

			for _, src := range prog.Source {
				fmt.Fprintf(out, "%02d: %-16v ; line %d\n", src.Ip, src.Text, src.LineNo)
			}
			return
		},
	}

	cmd.Flags().BoolVarP(&listing, "listing", "l", false, "Print a listing with source lines")

	return
}

func newDisasmCmd(app *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "disasm [program]",
		Short: "Print the listing of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			machine, err := app.machine(args)
			if err != nil {
				return
			}

			out := cmd.OutOrStdout()
			for _, line := range machine.Program.Disassemble() {
				fmt.Fprintln(out, line)
			}
			return
		},
	}

	addMachineFlags(cmd)

	return
}

func newDebugCmd(app *session) (cmd *cobra.Command) {
	var script string

	cmd = &cobra.Command{
		Use:   "debug [program]",
		Short: "Step through a program interactively",
		Long: `Starts an interactive debugger. Type 'help' for its commands.
With --exec, runs ';' separated debugger commands and exits.`,
		Example: `  tribit debug 0,1,5,4,3,0 -a 729
  tribit debug --file input.txt --exec 'break 4; run; regs'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			machine, err := app.machine(args)
			if err != nil {
				return
			}

			emu := app.emulator(machine, app.logger)
			dbg, err := debugger.New(emu, cmd.OutOrStdout(), machine.Register...)
			if err != nil {
				return
			}

			if len(script) == 0 {
				dbg.Run()
				return
			}

			for _, line := range strings.Split(script, ";") {
				err = dbg.Execute(line)
				if err != nil || dbg.Quit {
					return
				}
			}
			return
		},
	}

	addMachineFlags(cmd)
	cmd.Flags().StringVarP(&script, "exec", "e", "", "Run ';' separated debugger commands, then exit")

	return
}

func newConfigCmd(app *session) (cmd *cobra.Command) {
	cmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cfg.Save(cmd.OutOrStdout())
		},
	}

	addMachineFlags(cmd)

	return
}
