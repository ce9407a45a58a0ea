package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{Code{OP_ADV, 3}, "adv 3"},
		{Code{OP_ADV, COMBO_A}, "adv a"},
		{Code{OP_BXL, COMBO_A}, "bxl 4"},
		{Code{OP_BST, COMBO_B}, "bst b"},
		{Code{OP_JNZ, 6}, "jnz 6"},
		{Code{OP_BXC, 0}, "bxc"},
		{Code{OP_BXC, 5}, "bxc 5"},
		{Code{OP_OUT, COMBO_C}, "out c"},
		{Code{OP_BDV, COMBO_RESERVED}, "bdv 7"},
		{Code{OP_CDV, 1}, "cdv 1"},
		{Code{Opcode(9), 1}, "?9 1"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String())
	}
}

func TestOpcode_Kind(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(OPERAND_LITERAL, OP_JNZ.Kind())
	assert.Equal(OPERAND_LITERAL, OP_BXL.Kind())
	assert.Equal(OPERAND_IGNORED, OP_BXC.Kind())
	for _, op := range []Opcode{OP_ADV, OP_BST, OP_OUT, OP_BDV, OP_CDV} {
		assert.Equal(OPERAND_COMBO, op.Kind(), op.String())
	}

	assert.True(OP_CDV.Valid())
	assert.False(Opcode(8).Valid())
	assert.Equal("Opcode(8)", Opcode(8).String())
}

func TestParseDialect(t *testing.T) {
	assert := assert.New(t)

	dialect, err := ParseDialect("")
	assert.NoError(err)
	assert.Equal(DIALECT_COMBO, dialect)

	dialect, err = ParseDialect(" Literal ")
	assert.NoError(err)
	assert.Equal(DIALECT_LITERAL, dialect)

	dialect, err = ParseDialect("combo")
	assert.NoError(err)
	assert.Equal(DIALECT_COMBO, dialect)

	_, err = ParseDialect("python")
	assert.Equal(ErrDialectUnknown("python"), err)

	assert.Equal("literal", DIALECT_LITERAL.String())
	assert.Equal("Dialect(5)", Dialect(5).String())
}

func TestRegister_String(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("a", REG_A.String())
	assert.Equal("c", REG_C.String())
	assert.Equal("Register(3)", Register(3).String())
}
