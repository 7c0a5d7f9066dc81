// Package export writes stored episodes as JSON or CSV and reads those files
// back.
//
// Both formats carry the same canonical record: a column name mapped to nil,
// a string, an int64, or a []string (tags). Timestamps are RFC 3339 strings in
// UTC. In CSV, tags are written as a JSON array in a single cell and empty
// cells of nullable columns read back as nil.
package export
