package main

import (
	"fmt"
	"io"
	"strconv"

	"episodic/internal/ingest"
	"episodic/internal/stageexec"
)

func printIngestReport(out io.Writer, report *ingest.Report) {
	rows := [][]string{
		{"Fetched", strconv.Itoa(report.Fetched)},
		{"New", strconv.Itoa(report.New)},
		{"Duplicates", strconv.Itoa(report.Duplicates)},
		{"Skipped", strconv.Itoa(report.Skipped)},
		{"Failed", strconv.Itoa(report.Failed)},
	}
	fmt.Fprintf(out, "Ingested %s\n", report.FeedURL)
	fmt.Fprintln(out, renderTable(out, []string{"Items", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

// printStageReport prints the per-status counts, then one row per failure
// kind, then the failed episodes.
func printStageReport(out io.Writer, report *stageexec.Report) {
	if report.Total() == 0 {
		fmt.Fprintf(out, "%s: nothing to do\n", report.Stage)
		return
	}
	rows := [][]string{
		{"Succeeded", strconv.Itoa(report.Count(stageexec.StatusOK))},
		{"Skipped", strconv.Itoa(report.Count(stageexec.StatusSkipped))},
		{"Failed", strconv.Itoa(report.Count(stageexec.StatusFailed))},
	}
	counts := report.KindCounts()
	for _, kind := range report.Kinds() {
		rows = append(rows, []string{"  " + kind, strconv.Itoa(counts[kind])})
	}
	fmt.Fprintf(out, "%s: %d episode(s)\n", report.Stage, report.Total())
	fmt.Fprintln(out, renderTable(out, []string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	failures := report.Failures()
	if len(failures) == 0 {
		return
	}
	failRows := make([][]string, 0, len(failures))
	for _, f := range failures {
		failRows = append(failRows, []string{strconv.FormatInt(f.EpisodeID, 10), truncate(f.Title, 48), f.Kind, truncate(errorText(f.Err), 80)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"ID", "Title", "Kind", "Error"}, failRows, []columnAlignment{alignRight}))
}

// singleFailure turns a failed single-episode run into a command error.
func singleFailure(report *stageexec.Report) error {
	failures := report.Failures()
	if len(failures) == 0 {
		return nil
	}
	f := failures[0]
	return fmt.Errorf("%s episode %d failed (%s): %w", report.Stage, f.EpisodeID, f.Kind, f.Err)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
