package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the first word of an instruction pair.
type Opcode uint8

const (
	OP_ADV = Opcode(0) // adv: A = A >> combo
	OP_BXL = Opcode(1) // bxl: B = B ^ operand
	OP_BST = Opcode(2) // bst: B = combo % 8
	OP_JNZ = Opcode(3) // jnz: if A != 0, IP = literal
	OP_BXC = Opcode(4) // bxc: B = B ^ C
	OP_OUT = Opcode(5) // out: emit combo % 8
	OP_BDV = Opcode(6) // bdv: B = A >> combo
	OP_CDV = Opcode(7) // cdv: C = A >> combo
)

var opcodeName = [...]string{
	OP_ADV: "adv",
	OP_BXL: "bxl",
	OP_BST: "bst",
	OP_JNZ: "jnz",
	OP_BXC: "bxc",
	OP_OUT: "out",
	OP_BDV: "bdv",
	OP_CDV: "cdv",
}

// Valid returns true if the opcode is one of the eight instructions.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeName)
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
	return opcodeName[op]
}

// OperandKind describes how an opcode interprets its operand.
type OperandKind int

const (
	OPERAND_COMBO   = OperandKind(0) // combo
	OPERAND_LITERAL = OperandKind(1) // literal
	OPERAND_IGNORED = OperandKind(2) // ignored
)

func (kind OperandKind) String() string {
	switch kind {
	case OPERAND_COMBO:
		return "combo"
	case OPERAND_LITERAL:
		return "literal"
	case OPERAND_IGNORED:
		return "ignored"
	}
	return fmt.Sprintf("OperandKind(%d)", int(kind))
}

// Kind returns how the opcode's operand is written in a listing.
// bxl is listed as a literal in every dialect.
func (op Opcode) Kind() OperandKind {
	switch op {
	case OP_BXL, OP_JNZ:
		return OPERAND_LITERAL
	case OP_BXC:
		return OPERAND_IGNORED
	}
	return OPERAND_COMBO
}

// Combo operand selectors.
const (
	COMBO_A        = uint8(4) // Value of register A.
	COMBO_B        = uint8(5) // Value of register B.
	COMBO_C        = uint8(6) // Value of register C.
	COMBO_RESERVED = uint8(7) // Never valid as a combo operand.

	WORD_MAX = uint8(7) // Largest 3-bit word.
)

// Register is a register index.
type Register int

const (
	REG_A = Register(0) // a
	REG_B = Register(1) // b
	REG_C = Register(2) // c
)

var registerName = [...]string{
	REG_A: "a",
	REG_B: "b",
	REG_C: "c",
}

func (reg Register) String() string {
	if reg < REG_A || int(reg) >= len(registerName) {
		return fmt.Sprintf("Register(%d)", int(reg))
	}
	return registerName[reg]
}

// Dialect selects how bxl interprets its operand.
type Dialect int

const (
	// DIALECT_COMBO resolves the bxl operand like a combo operand, except
	// that the reserved selector 7 is taken as the literal 7.
	DIALECT_COMBO = Dialect(0) // combo
	// DIALECT_LITERAL always takes the bxl operand as a literal.
	DIALECT_LITERAL = Dialect(1) // literal
)

var dialectName = [...]string{
	DIALECT_COMBO:   "combo",
	DIALECT_LITERAL: "literal",
}

func (dialect Dialect) String() string {
	if dialect < DIALECT_COMBO || int(dialect) >= len(dialectName) {
		return fmt.Sprintf("Dialect(%d)", int(dialect))
	}
	return dialectName[dialect]
}

// ParseDialect returns the dialect by name. An empty name is DIALECT_COMBO.
func ParseDialect(name string) (dialect Dialect, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 0 {
		return
	}

	for n, known := range dialectName {
		if known == name {
			dialect = Dialect(n)
			return
		}
	}

	err = ErrDialectUnknown(name)
	return
}

// Code is a decoded instruction pair.
type Code struct {
	Op      Opcode
	Operand uint8
}

// comboString returns the listing form of a combo operand.
func comboString(operand uint8) string {
	switch operand {
	case COMBO_A:
		return REG_A.String()
	case COMBO_B:
		return REG_B.String()
	case COMBO_C:
		return REG_C.String()
	}
	return fmt.Sprintf("%d", operand)
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if !code.Op.Valid() {
		return fmt.Sprintf("?%d %d", uint8(code.Op), code.Operand)
	}

	switch code.Op.Kind() {
	case OPERAND_IGNORED:
		if code.Operand == 0 {
			return code.Op.String()
		}
		return fmt.Sprintf("%v %d", code.Op, code.Operand)
	case OPERAND_LITERAL:
		return fmt.Sprintf("%v %d", code.Op, code.Operand)
	}

	return fmt.Sprintf("%v %v", code.Op, comboString(code.Operand))
}

// Words returns the instruction as a pair of program words.
func (code Code) Words() []uint8 {
	return []uint8{uint8(code.Op), code.Operand}
}
