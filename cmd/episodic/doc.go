// Package main hosts the episodic CLI entrypoint and command graph.
//
// Every pipeline command resolves configuration once, picks the test or
// production database from the global --prod flag, takes the run lock for
// that database, and then hands a store to one of the internal stage
// drivers. Keep this package declarative: behaviour belongs in internal/.
package main
