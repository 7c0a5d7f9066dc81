// Package stageexec runs a pipeline stage over a sequence of episodes with
// per-item failure isolation.
//
// A failing episode produces a failed Result and an error log line; the loop
// moves on to the next episode. Cancellation is checked between episodes so
// the episode in flight always finishes. Report aggregates the results and
// classifies failures by Kind for the end-of-run summary.
package stageexec
