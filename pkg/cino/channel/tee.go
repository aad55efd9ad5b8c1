package channel

import "io"

// Tee duplicates every line to multiple channels.
type Tee struct {
	Channels []Channel
}

// NewTee creates a Tee.
func NewTee(channels ...Channel) *Tee {
	return &Tee{Channels: channels}
}

// Add appends more channels.
func (t *Tee) Add(channels ...Channel) *Tee {
	t.Channels = append(t.Channels, channels...)
	return t
}

// Begin implements Channel.
func (t *Tee) Begin() error {
	errs := &TeeError{Op: "begin"}
	for n, ch := range t.Channels {
		errs.add(n, ch.Begin())
	}
	return errs.errorOrNil()
}

// IsReady implements Channel. It is ready only when every channel is.
func (t *Tee) IsReady() bool {
	for _, ch := range t.Channels {
		if !ch.IsReady() {
			return false
		}
	}
	return true
}

// WriteLine implements Channel. A failing channel doesn't stop the
// line from being written to the others.
func (t *Tee) WriteLine(line string) error {
	errs := &TeeError{Op: "write"}
	for n, ch := range t.Channels {
		errs.add(n, ch.WriteLine(line))
	}
	return errs.errorOrNil()
}

// Close implements io.Closer and closes channels which are closers.
func (t *Tee) Close() error {
	errs := &TeeError{Op: "close"}
	for n, ch := range t.Channels {
		if closer, ok := ch.(io.Closer); ok {
			errs.add(n, closer.Close())
		}
	}
	return errs.errorOrNil()
}
