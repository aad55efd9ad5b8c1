package cino

import (
	"context"
	"sync"

	"github.com/robotalks/cino.go/pkg/cino/channel"
)

var (
	defaultReporter = NewReporter(channel.Stdout())
	defaultLock     sync.RWMutex
)

// Default gets the process-wide Reporter used by the package functions.
func Default() *Reporter {
	defaultLock.RLock()
	defer defaultLock.RUnlock()
	return defaultReporter
}

// SetDefault replaces the process-wide Reporter and returns the previous one.
func SetDefault(r *Reporter) *Reporter {
	defaultLock.Lock()
	defer defaultLock.Unlock()
	prev := defaultReporter
	defaultReporter = r
	return prev
}

// Require calls Require on the default Reporter.
func Require(cond bool) {
	Default().check(cond, true, "Require", 1)
}

// Check calls Check on the default Reporter.
func Check(cond bool) {
	Default().check(cond, false, "Check", 1)
}

// RequireExpr calls RequireExpr on the default Reporter.
func RequireExpr(cond bool, text string) {
	r, site := Default(), callerSite(1)
	r.Report(cond, r.EncodeExpr(text), site.file, site.line, true)
}

// CheckExpr calls CheckExpr on the default Reporter.
func CheckExpr(cond bool, text string) {
	r, site := Default(), callerSite(1)
	r.Report(cond, r.EncodeExpr(text), site.file, site.line, false)
}

// Report calls Report on the default Reporter.
func Report(result bool, expr, file string, line int, fatal bool) {
	Default().Report(result, expr, file, line, fatal)
}

// Plan calls Plan on the default Reporter.
func Plan(count int) {
	Default().Plan(count)
}

// PlanContext calls PlanContext on the default Reporter.
func PlanContext(ctx context.Context, count int) error {
	return Default().PlanContext(ctx, count)
}

// NoPlan calls NoPlan on the default Reporter.
func NoPlan() {
	Default().NoPlan()
}

// Done calls Done on the default Reporter.
func Done() {
	Default().Done()
}
