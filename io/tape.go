package io

import (
	"io"
	"strconv"
)

// Tape streams emitted values to an io.Writer as a single separator-joined
// line. The line is terminated by End.
type Tape struct {
	Output    io.Writer
	Separator string // Defaults to ",".

	count int
	ended bool
}

var _ Channel = (*Tape)(nil)

// Rewind starts a new line.
func (tc *Tape) Rewind() {
	tc.count = 0
	tc.ended = false
}

// Count returns the number of values written since the last Rewind.
func (tc *Tape) Count() int {
	return tc.count
}

func (tc *Tape) separator() string {
	if len(tc.Separator) == 0 {
		return ","
	}
	return tc.Separator
}

// Send writes a value, preceded by the separator if it is not the first.
func (tc *Tape) Send(value uint8) (err error) {
	if value > 7 {
		err = ErrValueRange
		return
	}

	if tc.ended {
		err = ErrTapeEnded
		return
	}

	if tc.Output == nil {
		err = ErrTapeOutput
		return
	}

	text := strconv.Itoa(int(value))
	if tc.count > 0 {
		text = tc.separator() + text
	}

	_, err = io.WriteString(tc.Output, text)
	if err != nil {
		return
	}

	tc.count++

	return
}

// End terminates the line. Further sends fail until the tape is rewound.
func (tc *Tape) End() (err error) {
	if tc.ended {
		return
	}

	if tc.Output == nil {
		err = ErrTapeOutput
		return
	}

	_, err = io.WriteString(tc.Output, "\n")
	tc.ended = true

	return
}
