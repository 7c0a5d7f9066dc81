package preflight

import (
	"context"

	"episodic/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the offline checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, target config.StoreTarget) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Reports directory", cfg.Paths.ReportsDir),
		CheckDirectoryAccess("Exports directory", cfg.Paths.ExportsDir),
		CheckStore(ctx, target),
		CheckFeedURL(cfg.Feed),
		CheckAPIKey(cfg.LLM),
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
