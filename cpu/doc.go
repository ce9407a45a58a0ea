// Package cpu implements the 3-bit computer and its assembler.
//
// The CPU consists of an instruction pointer (IP), three arbitrary-precision
// registers (A, B, C) and an output sequence. A program is a flat list of
// 3-bit words read in (opcode, operand) pairs. Operands are either literal
// values or "combo" selectors, where 0-3 are literals, 4-6 name the A, B and C
// registers, and 7 is reserved.
//
// The assembler provides mnemonics for the eight instructions, supporting
// labels, equates, and compile-time expression evaluation.
package cpu
