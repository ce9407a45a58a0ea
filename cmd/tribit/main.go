// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ezrec/tribit/config"
	"github.com/ezrec/tribit/logging"
	"github.com/ezrec/tribit/translate"
)

// session is the state shared by the commands of one invocation.
type session struct {
	configPath string
	stderr     io.Writer

	cfg    *config.Config
	logger *zap.Logger
	sync   func() error
}

// setup loads the configuration and starts logging.
func (app *session) setup(cmd *cobra.Command, args []string) (err error) {
	app.cfg, err = config.Load(app.configPath, cmd.Flags())
	if err != nil {
		return
	}

	if len(app.cfg.Lang) != 0 {
		translate.Use(app.cfg.Lang)
	}

	opts := app.cfg.Logging()
	opts.Console = zapcore.AddSync(app.stderr)
	app.logger, app.sync = logging.New(opts)

	app.logger.Debug("tribit: config",
		zap.String("config", app.configPath),
		zap.String("command", cmd.Name()),
		zap.Stringer("lang", translate.Tag()),
	)

	return
}

func (app *session) close() {
	if app.sync != nil {
		_ = app.sync()
	}
}

func newRootCmd(app *session) (root *cobra.Command) {
	root = &cobra.Command{
		Use:   "tribit",
		Short: "Emulator for a 3-bit computer",
		Long: `tribit runs programs for a computer with 3-bit words, eight
instructions, three unbounded registers and an output channel.

Programs are given as comma separated words, a register dump file,
or an assembly source.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "YAML configuration file")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.String("log-file", "", "Also log to this rotating file")
	flags.String("lang", "", "Message language (default: system locale)")

	root.AddCommand(
		newRunCmd(app),
		newAsmCmd(app),
		newDisasmCmd(app),
		newDebugCmd(app),
		newConfigCmd(app),
	)

	return
}

// execute runs the command line, and returns its error.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := &session{stderr: stderr}
	defer app.close()

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err = root.Execute()
	if err != nil && app.logger != nil {
		app.logger.Debug("tribit: failed", zap.Error(err))
	}

	return
}

func main() {
	err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}
