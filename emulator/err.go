package emulator

import (
	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error, and carries the
// output emitted before it occurred.
type ErrRuntime struct {
	LineNo int
	Ip     int
	Output cpu.Output
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("line %d ip %d: %v", err.LineNo, err.Ip, err.Err)
	}
	return f("ip %d: %v", err.Ip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
