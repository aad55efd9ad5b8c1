package cino

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testChannel struct {
	readyAfter int
	beginErr   error
	writeErr   error

	began int
	polls int
	lines []string
	lock  sync.Mutex
}

func (c *testChannel) Begin() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.began++
	return c.beginErr
}

func (c *testChannel) IsReady() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.polls++
	return c.polls > c.readyAfter
}

func (c *testChannel) WriteLine(line string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.lines = append(c.lines, line)
	return nil
}

func (c *testChannel) Lines() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.lines...)
}

func newTestReporter() (*Reporter, *testChannel) {
	ch := &testChannel{}
	r := NewReporter(ch)
	r.PollInterval = time.Millisecond
	return r, ch
}

// runHalting runs fn on its own goroutine and tells whether r halted it.
func runHalting(r *Reporter, fn func()) bool {
	haltCh := make(chan struct{}, 1)
	r.Halter = HaltFunc(func() {
		haltCh <- struct{}{}
		runtime.Goexit()
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
	select {
	case <-haltCh:
		return true
	default:
		return false
	}
}

func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func TestReport(t *testing.T) {
	testCases := []struct {
		name   string
		result bool
		fatal  bool
		expect string
		halts  bool
	}{
		{"pass", true, false, `{"result":true,"expr":a == b,"file":"Test.ino","line":7}`, false},
		{"pass fatal", true, true, `{"result":true,"expr":a == b,"file":"Test.ino","line":7}`, false},
		{"soft failure", false, false, `{"result":false,"expr":a == b,"file":"Test.ino","line":7,"fatal":false}`, false},
		{"fatal failure", false, true, `{"result":false,"expr":a == b,"file":"Test.ino","line":7,"fatal":true}`, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ch := newTestReporter()
			var after bool
			halted := runHalting(r, func() {
				r.Report(tc.result, "a == b", "/a/b/c/Test.ino", 7, tc.fatal)
				after = true
			})
			require.Equal(t, tc.halts, halted)
			require.Equal(t, !tc.halts, after)
			require.Equal(t, []string{tc.expect}, ch.Lines())
		})
	}
}

func TestRequire(t *testing.T) {
	r, ch := newTestReporter()
	x := 2
	var lines []int
	var reached bool
	halted := runHalting(r, func() {
		lines = append(lines, currentLine()+1)
		r.Require(x+2 == 4)
		lines = append(lines, currentLine()+1)
		r.Require(x+2 == 5)
		reached = true
	})
	require.True(t, halted)
	require.False(t, reached)
	require.Equal(t, []string{
		`{"result":true,"expr":x+2 == 4,"file":"reporter_test.go","line":` + strconv.Itoa(lines[0]) + `}`,
		`{"result":false,"expr":x+2 == 5,"file":"reporter_test.go","line":` + strconv.Itoa(lines[1]) + `,"fatal":true}`,
	}, ch.Lines())
}

func TestCheck(t *testing.T) {
	r, ch := newTestReporter()
	var line int
	var reached bool
	halted := runHalting(r, func() {
		line = currentLine() + 1
		r.Check(false)
		reached = true
	})
	require.False(t, halted)
	require.True(t, reached)
	require.Equal(t, []string{
		`{"result":false,"expr":false,"file":"reporter_test.go","line":` + strconv.Itoa(line) + `,"fatal":false}`,
	}, ch.Lines())
}

func TestExplicitExpr(t *testing.T) {
	r, ch := newTestReporter()
	line := currentLine() + 1
	r.CheckExpr(true, "voltage > 3.2")
	r.QuoteExpr = true
	r.CheckExpr(false, `name == "x"`)
	halted := runHalting(r, func() {
		r.RequireExpr(false, "ready")
	})
	require.True(t, halted)
	lines := ch.Lines()
	require.Len(t, lines, 3)
	require.Equal(t, `{"result":true,"expr":voltage > 3.2,"file":"reporter_test.go","line":`+strconv.Itoa(line)+`}`, lines[0])
	require.Equal(t, `{"result":false,"expr":"name == \"x\"","file":"reporter_test.go","line":`+strconv.Itoa(line+2)+`,"fatal":false}`, lines[1])
	require.Contains(t, lines[2], `"expr":"ready"`)
	require.Contains(t, lines[2], `"fatal":true}`)
}

func TestQuotedCapture(t *testing.T) {
	r, ch := newTestReporter()
	r.QuoteExpr = true
	n := 3
	r.Check(n > 1)
	lines := ch.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"expr":"n > 1"`)
}

func TestHalterReturning(t *testing.T) {
	r, ch := newTestReporter()
	halted := make(chan struct{})
	reached := make(chan struct{})
	r.Halter = HaltFunc(func() { close(halted) })
	go func() {
		r.Report(false, "false", "x.go", 1, true)
		close(reached)
	}()
	select {
	case <-halted:
	case <-time.After(time.Second):
		t.Fatal("halter not called")
	}
	select {
	case <-reached:
		t.Fatal("Report returned after fatal failure")
	case <-time.After(50 * time.Millisecond):
	}
	require.Len(t, ch.Lines(), 1)
}

func TestPlanWaitsForReady(t *testing.T) {
	r, ch := newTestReporter()
	ch.readyAfter = 3
	r.Plan(5)
	require.Equal(t, 1, ch.began)
	require.Equal(t, 4, ch.polls)
	require.Equal(t, []string{`{"plan":5}`}, ch.Lines())
}

func TestNoPlan(t *testing.T) {
	r, ch := newTestReporter()
	r.NoPlan()
	require.Equal(t, []string{`{"plan":-1}`}, ch.Lines())
}

func TestPlanContextCanceled(t *testing.T) {
	r, ch := newTestReporter()
	ch.readyAfter = 1 << 30
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.PlanContext(ctx, 3)
	require.Equal(t, context.DeadlineExceeded, err)
	require.Empty(t, ch.Lines())
}

func TestPlanBeginError(t *testing.T) {
	r, ch := newTestReporter()
	ch.beginErr = errors.New("no port")
	err := r.PlanContext(context.Background(), 3)
	require.EqualError(t, err, "begin channel: no port")
	require.Empty(t, ch.Lines())
	require.Equal(t, 0, ch.polls)
}

func TestDone(t *testing.T) {
	r, ch := newTestReporter()
	r.Done()
	r.Done()
	require.Equal(t, []string{`{"done":true}`, `{"done":true}`}, ch.Lines())
}

func TestRun(t *testing.T) {
	r, ch := newTestReporter()
	r.Plan(2)
	r.CheckExpr(true, "1")
	r.CheckExpr(false, "2")
	r.Done()
	lines := ch.Lines()
	require.Len(t, lines, 4)
	require.Equal(t, `{"plan":2}`, lines[0])
	require.Contains(t, lines[1], `{"result":true,"expr":1,`)
	require.Contains(t, lines[2], `{"result":false,"expr":2,`)
	require.Equal(t, `{"done":true}`, lines[3])
	require.NoError(t, r.Err())
}

func TestWriteError(t *testing.T) {
	r, ch := newTestReporter()
	ch.writeErr = errors.New("unplugged")
	r.Done()
	ch.writeErr = errors.New("still unplugged")
	r.Done()
	require.EqualError(t, r.Err(), "unplugged")
	require.EqualError(t, r.PlanContext(context.Background(), 1), "still unplugged")
}
