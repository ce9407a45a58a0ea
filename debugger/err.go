package debugger

import (
	"errors"

	"github.com/ezrec/tribit/translate"
)

var f = translate.From

var ErrArgumentCount = errors.New(f("wrong number of arguments"))

// ErrCommand is an unknown debugger command.
type ErrCommand string

func (err ErrCommand) Error() string {
	return f("unknown command '%v'", string(err))
}

// ErrArgument is an invalid command argument.
type ErrArgument string

func (err ErrArgument) Error() string {
	return f("invalid argument '%v'", string(err))
}
