package channel

import (
	"io"
	"os"
	"sync"
)

type flusher interface {
	Flush() error
}

// Writer implements Channel over an io.Writer.
// It is always ready.
type Writer struct {
	W io.Writer

	lock sync.Mutex
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{W: w}
}

// Stdout creates a Writer on standard output.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr creates a Writer on standard error.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

// Begin implements Channel.
func (w *Writer) Begin() error {
	return nil
}

// IsReady implements Channel.
func (w *Writer) IsReady() bool {
	return true
}

// WriteLine implements Channel.
func (w *Writer) WriteLine(line string) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if _, err := w.W.Write(terminate(line)); err != nil {
		return err
	}
	if f, ok := w.W.(flusher); ok {
		return f.Flush()
	}
	return nil
}
