package sh

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/cino.go/pkg/cino"
)

// DefaultReadyTimeout limits how long plan waits for the channel.
const DefaultReadyTimeout = 30 * time.Second

var (
	// ErrHalted indicates a required check failed and the emulated
	// device emits nothing anymore.
	ErrHalted = errors.New("halted by failed required check")
)

// Session emulates a device program emitting records by hand.
type Session struct {
	Reporter     *cino.Reporter
	File         string
	Line         int
	ReadyTimeout time.Duration

	halted bool
}

// NewSession creates a Session on the Reporter.
func NewSession(r *cino.Reporter) *Session {
	return &Session{
		Reporter:     r,
		File:         "cinosh.ino",
		Line:         1,
		ReadyTimeout: DefaultReadyTimeout,
	}
}

// Halted tells whether a required check has failed.
func (s *Session) Halted() bool {
	return s.halted
}

// Plan announces count checks.
func (s *Session) Plan(count int) error {
	if s.halted {
		return ErrHalted
	}
	ctx := context.Background()
	if s.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ReadyTimeout)
		defer cancel()
	}
	return s.Reporter.PlanContext(ctx, count)
}

// At sets the location reported by following checks, "FILE" or "FILE:LINE".
func (s *Session) At(location string) error {
	file, line := location, 0
	if idx := strings.LastIndexByte(location, ':'); idx >= 0 {
		n, err := strconv.Atoi(location[idx+1:])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid line in %q", location)
		}
		file, line = location[:idx], n
	}
	if file == "" {
		return fmt.Errorf("invalid location %q", location)
	}
	s.File = file
	if line > 0 {
		s.Line = line
	}
	return nil
}

// Check emits a check record for expr and advances the line. A failed
// fatal check halts the session.
func (s *Session) Check(result bool, expr string, fatal bool) error {
	if s.halted {
		return ErrHalted
	}
	r := s.Reporter
	prev := r.Halter
	done := make(chan struct{})
	r.Halter = cino.HaltFunc(func() {
		s.halted = true
		close(done)
		runtime.Goexit()
	})
	go func() {
		defer func() {
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		r.Report(result, r.EncodeExpr(expr), s.File, s.Line, fatal)
	}()
	<-done
	r.Halter = prev
	s.Line++
	if s.halted {
		return ErrHalted
	}
	return nil
}

// Done announces the end of the run.
func (s *Session) Done() error {
	if s.halted {
		return ErrHalted
	}
	s.Reporter.Done()
	return nil
}

// ParseOutcome converts pass/fail words into a check result.
func ParseOutcome(word string) (bool, error) {
	switch strings.ToLower(word) {
	case "pass", "ok", "true", "1":
		return true, nil
	case "fail", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("unknown outcome %q, expect pass or fail", word)
}

// CheckArgs handles "pass|fail EXPR..." arguments of check commands.
func (s *Session) CheckArgs(args []string, fatal bool) error {
	if len(args) < 2 {
		return fmt.Errorf("expect: pass|fail EXPR")
	}
	result, err := ParseOutcome(args[0])
	if err != nil {
		return err
	}
	return s.Check(result, strings.Join(args[1:], " "), fatal)
}
