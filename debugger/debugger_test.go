package debugger

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/emulator"
)

var quine = []uint8{2, 4, 1, 2, 7, 5, 4, 3, 0, 3, 1, 7, 5, 5, 3, 0}

func newDebugger(t *testing.T, words []uint8, a int64) (dbg *Debugger, out *bytes.Buffer) {
	out = &bytes.Buffer{}

	emu := emulator.NewEmulator()
	emu.Program = cpu.NewProgram(words...)

	dbg, err := New(emu, out, big.NewInt(a))
	require.NoError(t, err)

	return
}

func TestDebuggerStep(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, quine, 61657405)

	assert.NoError(dbg.Execute("step"))
	assert.Equal("02: bxl 2\n", out.String())
	assert.Equal(2, dbg.Emulator.Cpu.Ip)

	out.Reset()
	assert.NoError(dbg.Execute("step 3"))
	assert.Equal("08: adv 3\n", out.String())
	assert.Equal(4, dbg.Emulator.Cpu.Ticks)

	assert.ErrorIs(dbg.Execute("step 0"), ErrArgument("0"))
	assert.ErrorIs(dbg.Execute("step x"), ErrArgument("x"))
}

func TestDebuggerBreak(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, quine, 61657405)

	assert.NoError(dbg.Execute("break 12"))
	assert.NoError(dbg.Execute("run"))
	assert.Equal("break at 12: out b\n", out.String())
	assert.Empty(dbg.Emulator.Cpu.Output)

	assert.NoError(dbg.Execute("step"))
	assert.Equal(cpu.Output{2}, dbg.Emulator.Cpu.Output)

	out.Reset()
	assert.NoError(dbg.Execute("break"))
	assert.Equal("12\n", out.String())

	// Toggling the breakpoint off runs to completion.
	assert.NoError(dbg.Execute("break 12"))
	out.Reset()
	assert.NoError(dbg.Execute("run"))
	assert.Equal("2,3,4,7,5,7,3,0,7\n", out.String())
	assert.True(dbg.Emulator.Cpu.Halted())

	out.Reset()
	assert.NoError(dbg.Execute("step"))
	assert.Equal("--: Program complete\n", out.String())

	assert.ErrorIs(dbg.Execute("break 16"), ErrArgument("16"))
	assert.ErrorIs(dbg.Execute("break -1"), ErrArgument("-1"))
}

func TestDebuggerRegisters(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, []uint8{0, 1, 5, 4, 3, 0}, 729)

	assert.NoError(dbg.Execute("regs"))
	assert.Equal("a: 729\nb: 0\nc: 0\nip: 0\nticks: 0\n", out.String())

	assert.NoError(dbg.Execute("set b 0x10"))
	assert.Equal("16", dbg.Emulator.Cpu.Register[cpu.REG_B].String())

	assert.ErrorIs(dbg.Execute("set d 1"), ErrArgument("d"))
	assert.ErrorIs(dbg.Execute("set a"), ErrArgumentCount)
	assert.ErrorIs(dbg.Execute("set a zz"), cpu.ErrParseNumber("zz"))
}

func TestDebuggerReset(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, []uint8{0, 1, 5, 4, 3, 0}, 729)

	assert.NoError(dbg.Execute("run"))
	assert.Equal("4,6,3,5,6,3,5,2,1,0\n", out.String())

	out.Reset()
	assert.NoError(dbg.Execute("reset"))
	assert.Equal("00: adv 1\n", out.String())
	assert.Equal("729", dbg.Emulator.Cpu.Register[cpu.REG_A].String())
	assert.Empty(dbg.Emulator.Cpu.Output)

	out.Reset()
	assert.NoError(dbg.Execute("step 3"))
	assert.NoError(dbg.Execute("output"))
	assert.Equal("00: adv 1\n4\n", out.String())
}

func TestDebuggerList(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, []uint8{0, 1, 5, 4, 3, 0}, 729)

	assert.NoError(dbg.Execute("list"))
	assert.Contains(out.String(), "Register A: 729\n")
	assert.Contains(out.String(), "IP> 00: adv 1\n")
	assert.Contains(out.String(), "    04: jnz 0\n")
}

func TestDebuggerDump(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, []uint8{0, 1, 5, 4, 3, 0}, 729)

	assert.NoError(dbg.Execute("dump"))
	assert.Contains(out.String(), "State{")
	assert.Contains(out.String(), `"729"`)
}

func TestDebuggerErrors(t *testing.T) {
	assert := assert.New(t)

	dbg, out := newDebugger(t, []uint8{5, 7}, 0)

	assert.NoError(dbg.Execute(""))
	assert.NoError(dbg.Execute("   "))
	assert.ErrorIs(dbg.Execute("jump"), ErrCommand("jump"))
	assert.ErrorIs(dbg.Execute("run"), cpu.ErrInvalidOperand)
	assert.Empty(out.String())

	assert.False(dbg.Quit)
	assert.NoError(dbg.Execute("quit"))
	assert.True(dbg.Quit)
}

func TestDebuggerNew(t *testing.T) {
	assert := assert.New(t)

	emu := emulator.NewEmulator()
	emu.Program = cpu.NewProgram(0, 1, 5)

	dbg, err := New(emu, &bytes.Buffer{})
	assert.Nil(dbg)
	assert.ErrorIs(err, cpu.ErrTruncatedProgram)
}

func TestDebuggerComplete(t *testing.T) {
	assert := assert.New(t)

	dbg, _ := newDebugger(t, []uint8{0, 1, 5, 4, 3, 0}, 729)

	complete := func(text string) (texts []string) {
		buf := prompt.NewBuffer()
		buf.InsertText(text, false, true)
		for _, suggest := range dbg.Complete(*buf.Document()) {
			texts = append(texts, suggest.Text)
		}
		return
	}

	assert.Equal([]string{"step", "set"}, complete("s"))
	assert.ElementsMatch([]string{"regs", "reset", "run"}, complete("r"))
	assert.Equal([]string{"a", "b", "c"}, complete("set "))
	assert.Equal([]string{"b"}, complete("set b"))
	assert.Equal([]string{"0", "2", "4"}, complete("break "))
	assert.Equal([]string{"4"}, complete("break 4"))
	assert.Empty(complete("step 1"))
}
