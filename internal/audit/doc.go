// Package audit re-validates stored tags against the taxonomy rules and
// writes the findings as a JSON report. It never modifies episodes; the
// report is the only output.
package audit
