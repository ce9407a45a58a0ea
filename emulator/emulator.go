// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"math/big"
	"slices"

	"go.uber.org/zap"

	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/io"
)

const (
	LIMIT_NONE = 0 // Disables the step limit.
)

// Emulator state. CPU + program listing + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Tape   io.Tape     // Tape IO channel. Inactive unless Tape.Output is set.
	Limit  int         // Maximum instructions per run, or LIMIT_NONE.
	Logger *zap.Logger // Logger for verbose output. Nil is silent.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

func (emu *Emulator) logger() *zap.Logger {
	if emu.Logger == nil {
		return zap.NewNop()
	}
	return emu.Logger
}

// Reset loads the program listing, and sets the A, B and C registers.
func (emu *Emulator) Reset(regs ...*big.Int) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Logger = emu.Logger

	if emu.Tape.Output != nil {
		emu.Cpu.Tape = &emu.Tape
	} else {
		emu.Cpu.Tape = nil
	}

	err = emu.Cpu.Reset(emu.Program, regs...)
	if err != nil {
		err = &ErrRuntime{Err: err}
		return
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number for the executing instruction,
// or 0 if the program has no source listing.
func (emu *Emulator) LineNo() int {
	src, ok := emu.Program.Debug(emu.Cpu.Ip)
	if !ok {
		return 0
	}

	return src.LineNo
}

// Tick performs a single instruction of the emulator.
// Returns done once the program has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	ip := emu.Cpu.Ip
	defer func() {
		if err != nil {
			err = &ErrRuntime{
				LineNo: lineno,
				Ip:     ip,
				Output: slices.Clone(emu.Cpu.Output),
				Err:    err,
			}
		}
	}()

	if emu.Cpu.Halted() {
		done = true
		return
	}

	if emu.Limit > LIMIT_NONE && emu.Cpu.Ticks >= emu.Limit {
		err = cpu.ErrStepLimit
		return
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalted) {
		err = nil
		done = true
		return
	}

	return
}

// Run the emulator until the program halts, or an error occurs.
// The tape, if active, is ended on return.
func (emu *Emulator) Run() (output cpu.Output, err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	output = emu.Cpu.Output

	if emu.Cpu.Tape != nil {
		tape_err := emu.Tape.End()
		if err == nil {
			err = tape_err
		}
	}

	if emu.Verbose {
		emu.logger().Debug("emulator: stopped",
			zap.Int("ticks", emu.Cpu.Ticks),
			zap.Stringer("output", output),
			zap.Error(err),
		)
	}

	return
}

// Run executes a program of 3-bit words to completion, with register A
// set to a, and registers B and C optionally set from regs.
// Returns the emitted values.
func Run(words []uint8, a *big.Int, regs ...*big.Int) (output cpu.Output, err error) {
	emu := NewEmulator()
	emu.Program = cpu.NewProgram(words...)

	err = emu.Reset(append([]*big.Int{a}, regs...)...)
	if err != nil {
		return
	}

	output, err = emu.Run()

	return
}
