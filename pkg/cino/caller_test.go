package cino

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaptureMultiline(t *testing.T) {
	r, ch := newTestReporter()
	temp := 21
	r.Check(temp > 0 &&
		temp < 40)
	lines := ch.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"expr":temp > 0 && temp < 40,`)
}

func TestCaptureNested(t *testing.T) {
	r, ch := newTestReporter()
	values := []int{1, 2, 3}
	r.Check(len(values) == 3 && sum(values...) == 6)
	lines := ch.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"expr":len(values) == 3 && sum(values...) == 6,`)
}

func TestCaptureStringLiteral(t *testing.T) {
	r, ch := newTestReporter()
	name := "cino"
	r.Check(name == "cino")
	lines := ch.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"expr":name == "cino",`)
}

func TestCaptureUnavailableSource(t *testing.T) {
	site := callSite{file: filepath.Join(t.Name(), "missing.go"), line: 1}
	_, ok := site.exprOf("Check")
	require.False(t, ok)
	_, ok = callSite{}.exprOf("Check")
	require.False(t, ok)
}

func TestCaptureWrongCallee(t *testing.T) {
	site := callerSite(0)
	_, ok := site.exprOf("Require")
	require.False(t, ok)
}

func TestCaptureReportsCallerLine(t *testing.T) {
	r, ch := newTestReporter()
	line := currentLine() + 1
	r.Check(true)
	require.Equal(t, []string{
		`{"result":true,"expr":true,"file":"caller_test.go","line":` + strconv.Itoa(line) + `}`,
	}, ch.Lines())
}

func TestCaptureSameLine(t *testing.T) {
	r, ch := newTestReporter()
	a, b := true, false
	checks := []func(){func() { r.Check(a) }, func() { r.Check(b) }}
	for _, check := range checks {
		check()
	}
	lines := ch.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `{"result":true,"expr":null,`)
	require.Contains(t, lines[1], `{"result":false,"expr":null,`)
}

func TestCaptureNestedCheck(t *testing.T) {
	r, ch := newTestReporter()
	x := 1
	r.Check(func() bool {
		r.Check(x == 1)
		return true
	}())
	lines := ch.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"expr":x == 1,`)
	require.Contains(t, lines[1], `"expr":func() bool { r.Check(x == 1) return true }(),`)
}

func TestCaptureNestedCheckSameLine(t *testing.T) {
	r, ch := newTestReporter()
	x := 1
	r.Check(func() bool { r.Check(x == 1); return true }())
	lines := ch.Lines()
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"expr":null,`)
	require.Contains(t, lines[1], `"expr":null,`)
}

func sum(values ...int) (s int) {
	for _, v := range values {
		s += v
	}
	return
}
