package config

import (
	"errors"

	"github.com/ezrec/tribit/translate"
)

var f = translate.From

var (
	ErrProgramConflict = errors.New(f("both program and assembly source given"))
	ErrLimitRange      = errors.New(f("limit must not be negative"))
)

// ErrKey locates a configuration error.
type ErrKey struct {
	Key string
	Err error
}

func (err *ErrKey) Error() string {
	return f("%v: %v", err.Key, err.Err)
}

func (err *ErrKey) Unwrap() error {
	return err.Err
}
