package cpu

import (
	"errors"

	"github.com/ezrec/tribit/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted           = errors.New(f("halted"))
	ErrTruncatedProgram = errors.New(f("truncated program"))
	ErrInvalidOpcode    = errors.New(f("invalid opcode"))
	ErrInvalidOperand   = errors.New(f("invalid operand"))
	ErrNegativeShift    = errors.New(f("negative shift"))
	ErrStepLimit        = errors.New(f("step limit exceeded"))
	ErrRegisterCount    = errors.New(f("too many registers"))

	// Snapshot errors
	ErrProgramMissing    = errors.New(f("program missing"))
	ErrRegisterDuplicate = errors.New(f("register duplicated"))
	ErrSnapshotSyntax    = errors.New(f("snapshot syntax"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelRange      = errors.New(f("label out of jump range"))
	ErrOpcodeExtraArgs = errors.New(f("excessive arguments"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrOperandInvalid  = errors.New(f("operand invalid"))
)

// ErrOpcode locates the instruction that failed to execute.
type ErrOpcode struct {
	Ip   int
	Code Code
}

func (eo ErrOpcode) Error() string {
	return f("ip %d: %v", eo.Ip, eo.Code.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrDialectUnknown string

func (ed ErrDialectUnknown) Error() string {
	return f("dialect '%v' unknown", string(ed))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseWord string

func (err ErrParseWord) Error() string {
	return f("'%v' is not a 3-bit word", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
