package cpu

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"
)

// Snapshot is the register dump format used as program input:
//
//	Register A: 729
//	Register B: 0
//	Register C: 0
//
//	Program: 0,1,5,4,3,0
type Snapshot struct {
	Register [3]*big.Int
	Program  *Program
}

// ParseValue parses a register value. Decimal, and 0x, 0o and 0b prefixed
// values are accepted.
func ParseValue(text string) (value *big.Int, err error) {
	text = strings.TrimSpace(text)
	value, ok := new(big.Int).SetString(text, 0)
	if !ok {
		value = nil
		err = ErrParseNumber(text)
	}
	return
}

// parseRegisterLine parses "Register X: value".
func parseRegisterLine(line string) (reg Register, value *big.Int, err error) {
	label, text, ok := strings.Cut(line, ":")
	if !ok {
		err = ErrSnapshotSyntax
		return
	}

	name := strings.TrimSpace(strings.TrimPrefix(label, "Register"))
	switch strings.ToLower(name) {
	case "a":
		reg = REG_A
	case "b":
		reg = REG_B
	case "c":
		reg = REG_C
	default:
		err = ErrSnapshotSyntax
		return
	}

	value, err = ParseValue(text)
	return
}

// ParseSnapshot reads a register dump. Registers not listed are zero.
func ParseSnapshot(input io.Reader) (snap *Snapshot, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			snap = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	snap = &Snapshot{}

	for scanner.Scan() {
		lineno++
		line = strings.TrimSpace(scanner.Text())

		switch {
		case len(line) == 0:
			continue
		case strings.HasPrefix(line, "Register"):
			var reg Register
			var value *big.Int
			reg, value, err = parseRegisterLine(line)
			if err != nil {
				return
			}
			if snap.Register[reg] != nil {
				err = ErrRegisterDuplicate
				return
			}
			snap.Register[reg] = value
		case strings.HasPrefix(line, "Program"):
			if snap.Program != nil {
				err = ErrSnapshotSyntax
				return
			}
			snap.Program, err = ParseProgram(line)
			if err != nil {
				return
			}
		default:
			err = ErrSnapshotSyntax
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if snap.Program == nil {
		line = ""
		err = ErrProgramMissing
		return
	}

	for n := range snap.Register {
		if snap.Register[n] == nil {
			snap.Register[n] = new(big.Int)
		}
	}

	return
}

// Registers returns the register values in A, B, C order.
func (snap *Snapshot) Registers() []*big.Int {
	return snap.Register[:]
}

// String renders the snapshot in the format read by ParseSnapshot.
func (snap *Snapshot) String() string {
	var sb strings.Builder

	for n, value := range snap.Register {
		if value == nil {
			value = new(big.Int)
		}
		fmt.Fprintf(&sb, "Register %v: %v\n", strings.ToUpper(Register(n).String()), value)
	}
	fmt.Fprintf(&sb, "\nProgram: %v\n", snap.Program)

	return sb.String()
}
