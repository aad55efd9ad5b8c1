package cino

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NoPlanCount is the plan count announcing that no plan is declared.
const NoPlanCount = -1

// CheckRecord is the outcome of a single check.
type CheckRecord struct {
	Result bool
	// Expr is embedded as-is, it's never quoted or escaped.
	Expr string
	File string
	Line int
	// Fatal is only encoded when Result is false.
	Fatal bool
}

// String encodes the record as a line without the trailing newline.
func (r *CheckRecord) String() string {
	var b strings.Builder
	b.WriteString(`{"result":`)
	b.WriteString(strconv.FormatBool(r.Result))
	b.WriteString(`,"expr":`)
	b.WriteString(r.Expr)
	b.WriteString(`,"file":"`)
	b.WriteString(FileBase(r.File))
	b.WriteString(`","line":`)
	b.WriteString(strconv.Itoa(r.Line))
	if !r.Result {
		b.WriteString(`,"fatal":`)
		b.WriteString(strconv.FormatBool(r.Fatal))
	}
	b.WriteByte('}')
	return b.String()
}

// PlanRecord announces the number of checks to expect.
type PlanRecord struct {
	Count int
}

// String encodes the record.
func (r *PlanRecord) String() string {
	return `{"plan":` + strconv.Itoa(r.Count) + `}`
}

// DoneRecord announces the end of a run.
type DoneRecord struct{}

// String encodes the record.
func (r *DoneRecord) String() string {
	return `{"done":true}`
}

// FileBase strips double quotes from a source file path and keeps only
// the part after the final '/'.
func FileBase(file string) string {
	file = strings.Replace(file, `"`, "", -1)
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		return file[idx+1:]
	}
	return file
}

// QuoteExpr encodes expression text as a JSON string.
func QuoteExpr(text string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(text); err != nil {
		// a string always encodes.
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
