package cino

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cino.go/pkg/cino/channel"
)

// DefaultPollInterval is the interval between channel readiness polls.
const DefaultPollInterval = 10 * time.Millisecond

var stdout = channel.Stdout()

// Reporter writes test records to a channel.
// A zero Reporter writes to standard output and halts with Forever.
type Reporter struct {
	Channel      channel.Channel
	Halter       Halter
	PollInterval time.Duration
	// QuoteExpr makes Require/Check and the *Expr variants emit the
	// expression text as a JSON string instead of raw text, so every
	// record is valid JSON.
	QuoteExpr bool

	err  error
	lock sync.Mutex
}

// NewReporter creates a Reporter on the channel.
func NewReporter(ch channel.Channel) *Reporter {
	return &Reporter{
		Channel:      ch,
		Halter:       Forever,
		PollInterval: DefaultPollInterval,
	}
}

// Report writes a check record. expr is embedded verbatim. If the check
// failed and fatal is set, Report never returns.
func (r *Reporter) Report(result bool, expr, file string, line int, fatal bool) {
	rec := &CheckRecord{
		Result: result,
		Expr:   expr,
		File:   file,
		Line:   line,
		Fatal:  fatal,
	}
	r.emit(rec.String())
	if !result && fatal {
		r.halt(rec)
	}
}

// Require checks cond and halts forever if it's false.
// The expression text and location are taken from the call site.
func (r *Reporter) Require(cond bool) {
	r.check(cond, true, "Require", 1)
}

// Check checks cond and carries on whatever the result.
// The expression text and location are taken from the call site.
func (r *Reporter) Check(cond bool) {
	r.check(cond, false, "Check", 1)
}

// RequireExpr is Require with explicit expression text, for programs
// built without their sources around.
func (r *Reporter) RequireExpr(cond bool, text string) {
	site := callerSite(1)
	r.Report(cond, r.EncodeExpr(text), site.file, site.line, true)
}

// CheckExpr is Check with explicit expression text.
func (r *Reporter) CheckExpr(cond bool, text string) {
	site := callerSite(1)
	r.Report(cond, r.EncodeExpr(text), site.file, site.line, false)
}

// EncodeExpr prepares expression text for a record according to QuoteExpr.
func (r *Reporter) EncodeExpr(text string) string {
	if r.QuoteExpr {
		return QuoteExpr(text)
	}
	return text
}

// Plan announces count checks after the channel becomes ready.
func (r *Reporter) Plan(count int) {
	if err := r.PlanContext(context.Background(), count); err != nil {
		glog.Errorf("announce plan: %v", err)
	}
}

// NoPlan announces the run has no plan.
func (r *Reporter) NoPlan() {
	r.Plan(NoPlanCount)
}

// PlanContext begins the channel, waits until it's ready and writes the
// plan record.
func (r *Reporter) PlanContext(ctx context.Context, count int) error {
	ch := r.channel()
	if err := ch.Begin(); err != nil {
		return fmt.Errorf("begin channel: %v", err)
	}
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	for !ch.IsReady() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	rec := &PlanRecord{Count: count}
	return r.emit(rec.String())
}

// Done announces the end of the run.
func (r *Reporter) Done() {
	rec := &DoneRecord{}
	r.emit(rec.String())
}

// Err returns the first error writing to the channel.
func (r *Reporter) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.err
}

func (r *Reporter) check(cond, fatal bool, fn string, skip int) {
	site := callerSite(skip + 1)
	expr := nullExpr
	if text, ok := site.exprOf(fn); ok {
		expr = r.EncodeExpr(text)
	}
	r.Report(cond, expr, site.file, site.line, fatal)
}

func (r *Reporter) channel() channel.Channel {
	if r.Channel == nil {
		return stdout
	}
	return r.Channel
}

func (r *Reporter) emit(line string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	err := r.channel().WriteLine(line)
	if err != nil {
		glog.Warningf("write record: %v", err)
		if r.err == nil {
			r.err = err
		}
	}
	return err
}

func (r *Reporter) halt(rec *CheckRecord) {
	glog.Errorf("required check failed at %s:%d, halting", FileBase(rec.File), rec.Line)
	glog.Flush()
	if h := r.Halter; h != nil {
		h.Halt()
	}
	Forever.Halt()
}
