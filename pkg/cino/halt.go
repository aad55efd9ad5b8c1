package cino

import "time"

// Halter stops the calling goroutine permanently. Halt must not return.
type Halter interface {
	Halt()
}

// HaltFunc is func type of Halter.
type HaltFunc func()

// Halt implements Halter.
func (f HaltFunc) Halt() {
	f()
}

// Forever is the default Halter. It sleeps in an endless loop, which
// unlike an empty select isn't reported as a deadlock by the runtime when
// the halted goroutine is the only one.
var Forever Halter = HaltFunc(func() {
	for {
		time.Sleep(time.Hour)
	}
})
