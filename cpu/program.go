package cpu

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode"
)

// Source locates an instruction in its assembly source.
type Source struct {
	LineNo int
	Ip     int
	Text   string
}

// Program is a list of 3-bit words, read as (opcode, operand) pairs.
type Program struct {
	Words  []uint8
	Source []Source // Optional, filled in by the assembler.
}

// NewProgram creates a program from a list of words.
func NewProgram(words ...uint8) *Program {
	return &Program{Words: words}
}

// ParseProgram parses a list of comma or whitespace separated words. A leading
// "Program:" label is permitted.
func ParseProgram(text string) (prog *Program, err error) {
	text = strings.TrimSpace(text)
	if label, rest, ok := strings.Cut(text, ":"); ok && strings.EqualFold(strings.TrimSpace(label), "program") {
		text = rest
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	words := make([]uint8, 0, len(fields))
	for _, field := range fields {
		var value uint64
		value, err = strconv.ParseUint(field, 10, 8)
		if err != nil || value > uint64(WORD_MAX) {
			err = ErrParseWord(field)
			return
		}
		words = append(words, uint8(value))
	}

	prog = &Program{Words: words}
	return
}

// Len returns the number of words in the program.
func (prog *Program) Len() int {
	if prog == nil {
		return 0
	}
	return len(prog.Words)
}

// Validate checks that the program is made of whole instruction pairs.
func (prog *Program) Validate() (err error) {
	if prog.Len()%2 != 0 {
		err = ErrTruncatedProgram
	}
	return
}

// Fetch decodes the instruction at ip.
// Returns ErrHalted if ip is past the end of the program.
func (prog *Program) Fetch(ip int) (code Code, err error) {
	if ip >= prog.Len() {
		err = ErrHalted
		return
	}

	if ip < 0 || ip+1 >= prog.Len() {
		err = ErrTruncatedProgram
		return
	}

	code = Code{
		Op:      Opcode(prog.Words[ip]),
		Operand: prog.Words[ip+1],
	}

	return
}

// Codes iterates over the instruction pairs, by ip. A trailing odd word is
// not yielded.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(ip int, code Code) bool) {
		for ip := 0; ip+1 < prog.Len(); ip += 2 {
			code, _ := prog.Fetch(ip)
			if !yield(ip, code) {
				return
			}
		}
	}
}

// Debug returns the source of the instruction at ip, if known.
func (prog *Program) Debug(ip int) (src Source, ok bool) {
	if prog == nil {
		return
	}

	for _, entry := range prog.Source {
		if entry.Ip == ip {
			src = entry
			ok = true
			break
		}
	}

	return
}

// String returns the program words, comma separated.
func (prog *Program) String() string {
	if prog == nil {
		return ""
	}
	return Output(prog.Words).String()
}

// Disassemble returns one listing line per instruction pair.
func (prog *Program) Disassemble() (lines []string) {
	for ip, code := range prog.Codes() {
		lines = append(lines, fmt.Sprintf("%02d: %v", ip, code))
	}

	if prog.Len()%2 != 0 {
		lines = append(lines, fmt.Sprintf("%02d: .word %d", prog.Len()-1, prog.Words[prog.Len()-1]))
	}

	return
}

// Output is the sequence of values emitted by a program.
type Output []uint8

// String returns the values, comma separated.
func (out Output) String() string {
	var sb strings.Builder
	for n, value := range out {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(value)))
	}
	return sb.String()
}
