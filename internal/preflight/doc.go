// Package preflight provides readiness checks for the filesystem paths,
// configuration values and external services that episodic depends on.
//
// The CLI "episodic status" command renders RunAll as a table, and the
// --llm flag adds a live model ping through CheckLLM. Each check returns a
// Result rather than an error so a single failure never hides the others.
package preflight
