package cpu

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"github.com/ezrec/tribit/io"
)

// Channel is an output channel interface.
type Channel io.Channel

var eight = big.NewInt(8)

// Cpu is the simulation context for the 3-bit computer.
type Cpu struct {
	Verbose bool        // Set to enable per-instruction debug logging.
	Logger  *zap.Logger // Logger for verbose output. Nil is silent.
	Dialect Dialect     // Interpretation of the bxl operand.

	Program  *Program   // Program being executed.
	Ip       int        // Current instruction pointer.
	Register [3]big.Int // Register bank, indexed by REG_A, REG_B, REG_C.
	Output   Output     // Values emitted since the last reset.
	Tape     Channel    // If set, receives emitted values as they are produced.

	Ticks int // Executed instruction counter.
}

// NewCpu creates a new CPU with an empty program.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Program: &Program{},
	}

	return
}

func (cpu *Cpu) logger() *zap.Logger {
	if cpu.Logger == nil {
		return zap.NewNop()
	}
	return cpu.Logger
}

// Reset the CPU to run a program.
// - Rejects programs that are not whole instruction pairs.
// - Sets registers A, B and C from regs, in order. Missing registers are zero.
// - Clears the output, IP and tick counter, and rewinds the tape.
func (cpu *Cpu) Reset(prog *Program, regs ...*big.Int) (err error) {
	if prog == nil {
		prog = &Program{}
	}

	err = prog.Validate()
	if err != nil {
		return
	}

	if len(regs) > len(cpu.Register) {
		err = ErrRegisterCount
		return
	}

	cpu.Program = prog
	cpu.Ip = 0
	cpu.Ticks = 0
	cpu.Output = nil

	for n := range cpu.Register {
		cpu.Register[n].SetInt64(0)
		if n < len(regs) && regs[n] != nil {
			cpu.Register[n].Set(regs[n])
		}
	}

	if cpu.Tape != nil {
		cpu.Tape.Rewind()
	}

	if cpu.Verbose {
		cpu.logger().Debug("cpu: reset",
			zap.Int("words", prog.Len()),
			zap.Stringer("a", &cpu.Register[REG_A]),
			zap.Stringer("b", &cpu.Register[REG_B]),
			zap.Stringer("c", &cpu.Register[REG_C]),
			zap.Stringer("dialect", cpu.Dialect),
		)
	}

	return
}

// Halted returns true once the IP has run off the end of the program.
func (cpu *Cpu) Halted() bool {
	return cpu.Ip >= cpu.Program.Len()
}

// Get returns a copy of a register's value.
func (cpu *Cpu) Get(reg Register) *big.Int {
	return new(big.Int).Set(&cpu.Register[reg])
}

// Set sets a register's value.
func (cpu *Cpu) Set(reg Register, value *big.Int) {
	cpu.Register[reg].Set(value)
}

// Snapshot returns the registers and program in register dump form.
func (cpu *Cpu) Snapshot() (snap *Snapshot) {
	snap = &Snapshot{Program: cpu.Program}
	for n := range cpu.Register {
		snap.Register[n] = cpu.Get(Register(n))
	}
	return
}

// String returns the current CPU state as a register dump and listing.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	for n := range cpu.Register {
		fmt.Fprintf(&sb, "Register %v: %v\n", strings.ToUpper(Register(n).String()), &cpu.Register[n])
	}
	fmt.Fprintf(&sb, "Instruction Pointer: %d\n", cpu.Ip)
	fmt.Fprintf(&sb, "Program:\n")

	for ip, code := range cpu.Program.Codes() {
		marker := "   "
		if ip == cpu.Ip {
			marker = "IP>"
		}
		fmt.Fprintf(&sb, "%v %02d: %v\n", marker, ip, code)
	}

	if cpu.Halted() {
		fmt.Fprintf(&sb, "IP> --: Program complete\n")
	}

	return sb.String()
}

// Combo resolves a combo operand to its value. The value is a copy, and
// never aliases a register.
func (cpu *Cpu) Combo(operand uint8) (value *big.Int, err error) {
	switch operand {
	case 0, 1, 2, 3:
		value = big.NewInt(int64(operand))
	case COMBO_A:
		value = cpu.Get(REG_A)
	case COMBO_B:
		value = cpu.Get(REG_B)
	case COMBO_C:
		value = cpu.Get(REG_C)
	default:
		err = ErrInvalidOperand
	}

	return
}

// xorOperand resolves the bxl operand for the CPU's dialect.
func (cpu *Cpu) xorOperand(operand uint8) (value *big.Int, err error) {
	if cpu.Dialect == DIALECT_LITERAL || operand == COMBO_RESERVED {
		value = big.NewInt(int64(operand))
		return
	}

	return cpu.Combo(operand)
}

// divide returns A / 2**combo, rounded toward negative infinity.
func (cpu *Cpu) divide(operand uint8) (result *big.Int, err error) {
	shift, err := cpu.Combo(operand)
	if err != nil {
		return
	}

	if shift.Sign() < 0 {
		err = ErrNegativeShift
		return
	}

	a := &cpu.Register[REG_A]
	result = new(big.Int)

	if !shift.IsUint64() || shift.Uint64() > uint64(a.BitLen()) {
		// Every significant bit is shifted out.
		if a.Sign() < 0 {
			result.SetInt64(-1)
		}
		return
	}

	result.Rsh(a, uint(shift.Uint64()))

	return
}

// FetchCode fetches the instruction at the IP.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	return cpu.Program.Fetch(cpu.Ip)
}

// Tick executes a single CPU instruction cycle.
// Returns ErrHalted once the program has finished.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)

	return
}

// Execute executes a single decoded instruction at the current IP.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Ip: cpu.Ip, Code: code}, err)
		}
	}()

	if cpu.Verbose {
		cpu.logger().Debug("cpu: execute",
			zap.Int("ip", cpu.Ip),
			zap.Stringer("code", code),
			zap.Stringer("a", &cpu.Register[REG_A]),
			zap.Stringer("b", &cpu.Register[REG_B]),
			zap.Stringer("c", &cpu.Register[REG_C]),
		)
	}

	if code.Operand > WORD_MAX {
		err = ErrInvalidOperand
		return
	}

	next_ip := cpu.Ip + 2

	var value *big.Int

	switch code.Op {
	case OP_ADV:
		value, err = cpu.divide(code.Operand)
		if err != nil {
			return
		}
		cpu.Register[REG_A].Set(value)
	case OP_BXL:
		value, err = cpu.xorOperand(code.Operand)
		if err != nil {
			return
		}
		cpu.Register[REG_B].Xor(&cpu.Register[REG_B], value)
	case OP_BST:
		value, err = cpu.Combo(code.Operand)
		if err != nil {
			return
		}
		cpu.Register[REG_B].Mod(value, eight)
	case OP_JNZ:
		if cpu.Register[REG_A].Sign() != 0 {
			next_ip = int(code.Operand)
		}
	case OP_BXC:
		cpu.Register[REG_B].Xor(&cpu.Register[REG_B], &cpu.Register[REG_C])
	case OP_OUT:
		value, err = cpu.Combo(code.Operand)
		if err != nil {
			return
		}
		out := uint8(value.Mod(value, eight).Uint64())
		cpu.Output = append(cpu.Output, out)
		if cpu.Tape != nil {
			err = cpu.Tape.Send(out)
			if err != nil {
				return
			}
		}
	case OP_BDV:
		value, err = cpu.divide(code.Operand)
		if err != nil {
			return
		}
		cpu.Register[REG_B].Set(value)
	case OP_CDV:
		value, err = cpu.divide(code.Operand)
		if err != nil {
			return
		}
		cpu.Register[REG_C].Set(value)
	default:
		err = ErrInvalidOpcode
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}
