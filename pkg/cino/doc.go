// Package cino reports test assertions from a device program to a
// host-side harness.
package cino

// Records are single lines of JSON-like text written to a channel:
//
//   {"plan":<count>}            count of checks to expect, -1 if unknown
//   {"result":<bool>,"expr":<raw expression>,"file":"<basename>","line":<n>[,"fatal":<bool>]}
//   {"done":true}
//
// The expression is embedded verbatim, so a line is valid JSON only if
// the expression text happens to be a JSON value (see Reporter.QuoteExpr).
// "fatal" is present only on failed checks. After a failed fatal check
// the program stops forever and the stream goes silent.
//
// Producer: device program
// Consumer: host test harness
