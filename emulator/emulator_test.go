package emulator

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/tribit/cpu"
)

var quine = []uint8{2, 4, 1, 2, 7, 5, 4, 3, 0, 3, 1, 7, 5, 5, 3, 0}

func assemble(t *testing.T, program []string) *cpu.Program {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func doRunSingle(emu *Emulator, program []string, t *testing.T, regs ...int64) (output string) {
	assert := assert.New(t)

	var tape_output bytes.Buffer

	emu.Program = assemble(t, program)
	emu.Tape.Output = &tape_output

	values := make([]*big.Int, len(regs))
	for n, reg := range regs {
		values[n] = big.NewInt(reg)
	}

	err := emu.Reset(values...)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	for done := false; !done; {
		lineno := emu.LineNo()
		done, err = emu.Tick()
		if err != nil {
			t.Fatalf("line %d: %v", lineno, err)
		}
	}

	assert.NoError(emu.Tape.End())

	output = tape_output.String()
	return
}

func TestEmulatorRegisters(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"bst a",
		"bxl 3",
		"cdv 2",
		"bxc",
		"out b",
		"out c",
	}

	output := doRunSingle(emu, program, t, 13)

	assert.Equal("5,3\n", output)
	assert.Equal(int64(13), emu.Cpu.Register[cpu.REG_A].Int64())
	assert.Equal(int64(5), emu.Cpu.Register[cpu.REG_B].Int64())
	assert.Equal(int64(3), emu.Cpu.Register[cpu.REG_C].Int64())
	assert.Equal(6, emu.Ticks())
}

func TestEmulatorLoop(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"loop:   adv 1",
		"        out a",
		"        jnz loop",
	}

	output := doRunSingle(emu, program, t, 729)

	assert.Equal("4,6,3,5,6,3,5,2,1,0\n", output)
	assert.Equal(30, emu.Ticks())
	assert.True(emu.Cpu.Halted())
}

func TestEmulatorEqu(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		".equ SHIFT 3",
		"loop:   adv SHIFT",
		"        out $(COMBO_A)",
		"        jnz loop",
	}

	output := doRunSingle(emu, program, t, 117440)

	assert.Equal("0,3,5,4,3,0\n", output)
	assert.Equal(18, emu.Ticks())
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, []string{
		"; header",
		"",
		"out 1",
		"; spacer",
		"out 2",
	})

	assert.NoError(emu.Reset())

	expected := []int{3, 5, 0}
	for _, lineno := range expected {
		assert.Equal(lineno, emu.LineNo())
		_, err := emu.Tick()
		assert.NoError(err)
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = assemble(t, []string{
		"out 1",
		"out 2",
		".word 7, 7",
	})

	assert.NoError(emu.Reset())

	output, err := emu.Run()
	assert.ErrorIs(err, cpu.ErrInvalidOperand)
	assert.ErrorIs(err, cpu.ErrOpcode{})
	assert.Equal(cpu.Output{1, 2}, output)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(3, runtime.LineNo)
		assert.Equal(4, runtime.Ip)
		assert.Equal(cpu.Output{1, 2}, runtime.Output)
	}
}

func TestEmulatorLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = cpu.NewProgram(3, 0)
	emu.Limit = 100

	assert.NoError(emu.Reset(big.NewInt(1)))

	_, err := emu.Run()
	assert.ErrorIs(err, cpu.ErrStepLimit)
	assert.Equal(100, emu.Ticks())

	// A program that halts exactly at the limit succeeds.
	emu.Program = cpu.NewProgram(0, 1, 5, 4, 3, 0)
	emu.Limit = 30
	assert.NoError(emu.Reset(big.NewInt(729)))

	output, err := emu.Run()
	assert.NoError(err)
	assert.Equal("4,6,3,5,6,3,5,2,1,0", output.String())
}

func TestEmulatorTape(t *testing.T) {
	assert := assert.New(t)

	var tape_output bytes.Buffer

	emu := NewEmulator()
	emu.Program = cpu.NewProgram(quine...)
	emu.Tape.Output = &tape_output

	assert.NoError(emu.Reset(big.NewInt(61657405)))
	output, err := emu.Run()
	assert.NoError(err)
	assert.Equal("2,3,4,7,5,7,3,0,7", output.String())
	assert.Equal("2,3,4,7,5,7,3,0,7\n", tape_output.String())

	// Reset rewinds the tape onto a new line.
	tape_output.Reset()
	emu.Program = cpu.NewProgram(5, 1, 5, 7)
	assert.NoError(emu.Reset())
	output, err = emu.Run()
	assert.ErrorIs(err, cpu.ErrInvalidOperand)
	assert.Equal("1", output.String())
	assert.Equal("1\n", tape_output.String())
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Program = cpu.NewProgram(0, 1, 5)

	err := emu.Reset()
	assert.ErrorIs(err, cpu.ErrTruncatedProgram)

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		words  []uint8
		a      int64
		regs   []int64
		output string
	}){
		{"countdown", []uint8{0, 1, 5, 4, 3, 0}, 729, nil, "4,6,3,5,6,3,5,2,1,0"},
		{"quine", quine, 61657405, nil, "2,3,4,7,5,7,3,0,7"},
		{"self", []uint8{0, 3, 5, 4, 3, 0}, 117440, nil, "0,3,5,4,3,0"},
		{"mod", []uint8{5, 0, 5, 1, 5, 4}, 10, nil, "0,1,2"},
		{"registers", []uint8{4, 0, 5, 5}, 0, []int64{2024, 43690}, "2"},
		{"empty", nil, 1, nil, ""},
	}

	for _, entry := range table {
		regs := make([]*big.Int, len(entry.regs))
		for n, reg := range entry.regs {
			regs[n] = big.NewInt(reg)
		}

		output, err := Run(entry.words, big.NewInt(entry.a), regs...)
		assert.NoError(err, entry.name)
		assert.Equal(entry.output, output.String(), entry.name)
	}
}

func TestRunLarge(t *testing.T) {
	assert := assert.New(t)

	a := new(big.Int).Lsh(big.NewInt(1), 70)
	a.Add(a, big.NewInt(12345))

	output, err := Run(quine, a)
	assert.NoError(err)
	assert.Equal("3,2,5,3,7,5,5,5,5,5,5,5,5,5,5,5,5,5,5,5,5,5,1,5", output.String())
}

func TestRunErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Run([]uint8{0, 7}, big.NewInt(1))
	assert.ErrorIs(err, cpu.ErrInvalidOperand)

	_, err = Run([]uint8{8, 0}, big.NewInt(1))
	assert.ErrorIs(err, cpu.ErrInvalidOpcode)

	_, err = Run([]uint8{0, 1, 5}, big.NewInt(1))
	assert.ErrorIs(err, cpu.ErrTruncatedProgram)

	_, err = Run([]uint8{3, 1, 5, 4}, big.NewInt(1))
	assert.ErrorIs(err, cpu.ErrTruncatedProgram)

	_, err = Run(nil, big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4))
	assert.ErrorIs(err, cpu.ErrRegisterCount)
}
