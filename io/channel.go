// Package io provides output channel implementations for the tribit emulator.
// Channels receive the 3-bit values emitted by the `out` instruction as they
// are produced, so a consumer sees partial output even when a run fails.
package io

// Channel defines the interface for all output channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Send writes a single emitted value to the channel.
	Send(value uint8) error
}
