package io

import (
	"errors"

	"github.com/ezrec/tribit/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrValueRange = errors.New(f("value out of range"))
	ErrTapeEnded  = errors.New(f("tape ended"))
	ErrTapeOutput = errors.New(f("tape has no output"))
)
