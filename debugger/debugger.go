// Package debugger is an interactive line debugger for the emulator.
package debugger

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/k0kubun/pp/v3"

	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/emulator"
)

const PROMPT = "tribit> "

var commands = []prompt.Suggest{
	{Text: "step", Description: "Execute N instructions (default 1)"},
	{Text: "run", Description: "Run to a breakpoint or halt"},
	{Text: "regs", Description: "Show registers"},
	{Text: "list", Description: "Show registers and program listing"},
	{Text: "set", Description: "Set a register: set a 729"},
	{Text: "break", Description: "Toggle a breakpoint, or list them"},
	{Text: "output", Description: "Show output so far"},
	{Text: "dump", Description: "Dump machine state"},
	{Text: "reset", Description: "Restart the program"},
	{Text: "help", Description: "Show commands"},
	{Text: "quit", Description: "Leave the debugger"},
}

var registers = []prompt.Suggest{
	{Text: "a", Description: "Register A"},
	{Text: "b", Description: "Register B"},
	{Text: "c", Description: "Register C"},
}

// State is the machine state shown by the dump command.
type State struct {
	Ip          int
	Ticks       int
	A, B, C     string
	Output      string
	Halted      bool
	Breakpoints []int
}

// Debugger drives an emulator from command lines.
type Debugger struct {
	Emulator   *emulator.Emulator
	Output     io.Writer
	Register   []*big.Int   // Registers loaded on reset.
	Breakpoint map[int]bool // Instruction pointers to stop at.
	Quit       bool         // Set once the quit command is seen.

	printer *pp.PrettyPrinter
}

// New creates a debugger, and resets the emulator with the registers.
func New(emu *emulator.Emulator, output io.Writer, regs ...*big.Int) (dbg *Debugger, err error) {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.SetOutput(output)

	dbg = &Debugger{
		Emulator:   emu,
		Output:     output,
		Register:   regs,
		Breakpoint: map[int]bool{},
		printer:    printer,
	}

	err = emu.Reset(regs...)
	if err != nil {
		dbg = nil
		return
	}

	return
}

func (dbg *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(dbg.Output, format, args...)
}

// where describes the next instruction to execute.
func (dbg *Debugger) where() string {
	emu := dbg.Emulator
	if emu.Cpu.Halted() {
		return "--: Program complete"
	}

	code, err := emu.Cpu.FetchCode()
	if err != nil {
		return fmt.Sprintf("%02d: %v", emu.Cpu.Ip, err)
	}

	return fmt.Sprintf("%02d: %v", emu.Cpu.Ip, code)
}

// step executes up to count instructions, stopping early at a halt or,
// when honour_break is set, at a breakpoint.
func (dbg *Debugger) step(count int, honour_break bool) (err error) {
	for n := 0; count < 0 || n < count; n++ {
		var done bool
		done, err = dbg.Emulator.Tick()
		if err != nil || done {
			return
		}
		if honour_break && dbg.Breakpoint[dbg.Emulator.Cpu.Ip] {
			dbg.printf("break at %v\n", dbg.where())
			return
		}
	}

	return
}

func (dbg *Debugger) state() (state State) {
	emu := dbg.Emulator

	state = State{
		Ip:     emu.Cpu.Ip,
		Ticks:  emu.Cpu.Ticks,
		A:      emu.Cpu.Register[cpu.REG_A].String(),
		B:      emu.Cpu.Register[cpu.REG_B].String(),
		C:      emu.Cpu.Register[cpu.REG_C].String(),
		Output: emu.Cpu.Output.String(),
		Halted: emu.Cpu.Halted(),
	}

	for ip := range dbg.Breakpoint {
		state.Breakpoints = append(state.Breakpoints, ip)
	}
	slices.Sort(state.Breakpoints)

	return
}

func parseCount(args []string) (count int, err error) {
	count = 1
	if len(args) == 0 {
		return
	}

	count, err = strconv.Atoi(args[0])
	if err != nil || count < 1 {
		err = ErrArgument(args[0])
	}
	return
}

// Execute runs one command line.
func (dbg *Debugger) Execute(line string) (err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	emu := dbg.Emulator
	name, args := strings.ToLower(words[0]), words[1:]

	switch name {
	case "step", "s":
		var count int
		count, err = parseCount(args)
		if err != nil {
			return
		}
		err = dbg.step(count, false)
		if err != nil {
			return
		}
		dbg.printf("%v\n", dbg.where())
	case "run", "continue", "c":
		err = dbg.step(-1, true)
		if err != nil {
			return
		}
		if emu.Cpu.Halted() {
			dbg.printf("%v\n", emu.Cpu.Output)
		}
	case "regs", "r":
		for n := range emu.Cpu.Register {
			dbg.printf("%v: %v\n", cpu.Register(n), &emu.Cpu.Register[n])
		}
		dbg.printf("ip: %d\nticks: %d\n", emu.Cpu.Ip, emu.Cpu.Ticks)
	case "list", "l":
		dbg.printf("%v", emu.Cpu)
	case "set":
		if len(args) != 2 {
			err = ErrArgumentCount
			return
		}
		var reg cpu.Register
		switch strings.ToLower(args[0]) {
		case "a":
			reg = cpu.REG_A
		case "b":
			reg = cpu.REG_B
		case "c":
			reg = cpu.REG_C
		default:
			err = ErrArgument(args[0])
			return
		}
		var value *big.Int
		value, err = cpu.ParseValue(args[1])
		if err != nil {
			return
		}
		emu.Cpu.Set(reg, value)
	case "break", "b":
		if len(args) == 0 {
			for _, ip := range dbg.state().Breakpoints {
				dbg.printf("%02d\n", ip)
			}
			return
		}
		var ip int
		ip, err = strconv.Atoi(args[0])
		if err != nil || ip < 0 || ip >= emu.Program.Len() {
			err = ErrArgument(args[0])
			return
		}
		if dbg.Breakpoint[ip] {
			delete(dbg.Breakpoint, ip)
		} else {
			dbg.Breakpoint[ip] = true
		}
	case "output", "o":
		dbg.printf("%v\n", emu.Cpu.Output)
	case "dump":
		_, err = dbg.printer.Println(dbg.state())
	case "reset":
		err = emu.Reset(dbg.Register...)
		if err != nil {
			return
		}
		dbg.printf("%v\n", dbg.where())
	case "help", "h", "?":
		for _, cmd := range commands {
			dbg.printf("%-8v %v\n", cmd.Text, cmd.Description)
		}
	case "quit", "exit", "q":
		dbg.Quit = true
	default:
		err = ErrCommand(name)
	}

	return
}

// Complete suggests commands, registers and breakpoint addresses.
func (dbg *Debugger) Complete(d prompt.Document) []prompt.Suggest {
	args := strings.Fields(d.TextBeforeCursor())
	if len(args) == 0 || (len(args) == 1 && !strings.HasSuffix(d.TextBeforeCursor(), " ")) {
		return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
	}

	switch strings.ToLower(args[0]) {
	case "set":
		if len(args) == 1 || (len(args) == 2 && !strings.HasSuffix(d.TextBeforeCursor(), " ")) {
			return prompt.FilterHasPrefix(registers, d.GetWordBeforeCursor(), true)
		}
	case "break", "b":
		var suggests []prompt.Suggest
		for ip, code := range dbg.Emulator.Program.Codes() {
			suggests = append(suggests, prompt.Suggest{
				Text:        strconv.Itoa(ip),
				Description: code.String(),
			})
		}
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), false)
	}

	return []prompt.Suggest{}
}

// Run reads and executes commands from the terminal until quit.
func (dbg *Debugger) Run() {
	executor := func(in string) {
		err := dbg.Execute(in)
		if err != nil {
			dbg.printf("error: %v\n", err)
		}
	}

	p := prompt.New(
		executor,
		dbg.Complete,
		prompt.OptionPrefix(PROMPT),
		prompt.OptionTitle("tribit debugger"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && dbg.Quit
		}),
	)

	dbg.printf("%v\n", dbg.where())
	p.Run()
}
