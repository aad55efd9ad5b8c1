// Package channel provides output channels carrying test records from a
// device to a host-side harness.
package channel

import "errors"

// Channel is an ordered, line-oriented output stream.
type Channel interface {
	// Begin opens or prepares the channel. It must not block waiting
	// for the peer; readiness is polled with IsReady.
	Begin() error
	// IsReady reports whether the peer is attached and written lines
	// will be delivered.
	IsReady() bool
	// WriteLine writes line followed by a newline as one message.
	WriteLine(line string) error
}

var (
	// ErrNotReady indicates the channel is not opened yet.
	ErrNotReady = errors.New("not ready")
)

func terminate(line string) []byte {
	b := make([]byte, len(line)+1)
	copy(b, line)
	b[len(line)] = '\n'
	return b
}
