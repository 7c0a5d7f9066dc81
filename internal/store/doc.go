// Package store persists podcast episodes in SQLite and is the single source
// of truth for their pipeline state.
//
// Each Store is bound to exactly one StoreTarget (test or prod) at Open time
// and never addresses the other database. Writes touch one row per
// statement; the conditional UPDATEs in UpdateCleaning and UpdateTags are how
// the store guards the cleaning/tagging state machine, so callers cannot tag
// an uncleaned episode even when two runs race.
//
// The schema lives in schema.sql and is created on first open. When you add
// columns, update schema.sql and bump schemaVersion.
package store
