// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/ezrec/tribit/internal"
)

// Statement is a line of assembled code with its source location and
// generated words.
type Statement struct {
	LineNo    int
	Ip        int
	Words     []string
	Code      []uint8
	LinkLabel string
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":   "0",
	"COMBO_A":  strconv.Itoa(int(COMBO_A)),
	"COMBO_B":  strconv.Itoa(int(COMBO_B)),
	"COMBO_C":  strconv.Itoa(int(COMBO_C)),
	"WORD_MAX": strconv.Itoa(int(WORD_MAX)),
}

// opcodeMap maps mnemonics to opcodes.
var opcodeMap = func() map[string]Opcode {
	ops := make(map[string]Opcode, len(opcodeName))
	for n, name := range opcodeName {
		ops[name] = Opcode(n)
	}
	return ops
}()

// comboMap maps register names to combo selectors.
var comboMap = map[string]uint8{
	"a": COMBO_A,
	"b": COMBO_B,
	"c": COMBO_C,
}

var (
	reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass assembler for the 3-bit computer.
//
//	; comment
//	.equ SHIFT 3
//	loop:   adv $(SHIFT)
//	        out a
//	        jnz loop
type Assembler struct {
	Verbose   bool        // If set, logs the assembler actions.
	Logger    *zap.Logger // Logger for verbose output.
	Statement []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to IPs.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() *zap.Logger {
	if asm.Logger == nil {
		return zap.NewNop()
	}
	return asm.Logger
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// literal returns a word as a 3-bit literal operand.
func (asm *Assembler) literal(word string) (operand uint8, err error) {
	value, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if value < 0 || value > int64(WORD_MAX) {
		err = ErrOperandInvalid
		return
	}

	operand = uint8(value)
	return
}

// combo returns a word as a combo operand: 0-3, or a register name.
func (asm *Assembler) combo(word string) (operand uint8, err error) {
	operand, ok := comboMap[strings.ToLower(word)]
	if ok {
		return
	}

	operand, err = asm.literal(word)
	if err != nil {
		return
	}

	if operand == COMBO_RESERVED {
		err = ErrOperandInvalid
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// isAddress returns true for listing address prefixes, such as "04".
func isAddress(label string) bool {
	if len(label) == 0 {
		return false
	}
	for _, r := range label {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// parseLine parses a single line into words, handling equates, labels and
// expressions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		words = words[1:]

		// Listing addresses are informational.
		if isAddress(label) {
			continue
		}

		if !reLabel.MatchString(label) {
			err = ErrOperandInvalid
			return
		}

		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentIp()
	}

	for n := 1; n < len(words); n++ {
		equate, ok := asm.Equate[words[n]]
		if ok {
			words[n] = equate
		}
	}

	return
}

// parseWords assembles a single statement.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	st := Statement{
		LineNo: lineno,
		Ip:     asm.currentIp(),
		Words:  words,
	}

	if words[0] == ".word" {
		if len(words) == 1 {
			err = ErrOperandMissing
			return
		}
		for _, word := range words[1:] {
			var value uint8
			value, err = asm.literal(word)
			if err != nil {
				return
			}
			st.Code = append(st.Code, value)
		}
		asm.Statement = append(asm.Statement, st)
		return
	}

	op, ok := opcodeMap[strings.ToLower(words[0])]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	if len(args) > 1 {
		err = ErrOpcodeExtraArgs
		return
	}

	if len(args) == 0 && op != OP_BXC {
		err = ErrOperandMissing
		return
	}

	var operand uint8

	switch op {
	case OP_BXC:
		if len(args) == 1 {
			operand, err = asm.literal(args[0])
		}
	case OP_BXL:
		var is_reg bool
		operand, is_reg = comboMap[strings.ToLower(args[0])]
		if !is_reg {
			operand, err = asm.literal(args[0])
		}
	case OP_JNZ:
		operand, err = asm.literal(args[0])
		if err != nil && reLabel.MatchString(args[0]) {
			err = nil
			st.LinkLabel = args[0]
		}
	default:
		operand, err = asm.combo(args[0])
	}
	if err != nil {
		return
	}

	st.Code = Code{Op: op, Operand: operand}.Words()
	asm.Statement = append(asm.Statement, st)

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Ip + len(last.Code)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Statement = asm.Statement[:0]
	asm.Equate = make(map[string]string, len(sysEquate)+len(asm.predefine))
	for attr, val := range internal.IterSeq2Concat(maps.All(sysEquate), maps.All(asm.predefine)) {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().Debug("asm: line", zap.Int("lineno", lineno), zap.String("text", text))
		}

		text_comment, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(text_comment)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}

		lineno = st.LineNo
		line = strings.Join(st.Words, " ")

		ip, ok := asm.Label[st.LinkLabel]
		if !ok {
			err = ErrLabelMissing(st.LinkLabel)
			return
		}
		if ip > int(WORD_MAX) {
			err = ErrLabelRange
			return
		}
		st.Code[len(st.Code)-1] = uint8(ip)
	}

	prog = &Program{}
	for _, st := range asm.Statement {
		prog.Source = append(prog.Source, Source{
			LineNo: st.LineNo,
			Ip:     st.Ip,
			Text:   strings.Join(st.Words, " "),
		})
		prog.Words = append(prog.Words, st.Code...)
	}

	return
}
