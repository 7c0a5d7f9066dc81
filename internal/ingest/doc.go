// Package ingest classifies feed items as new or duplicate and inserts the
// new ones.
//
// Identity is weak: a guid match wins, otherwise an exact title match marks
// the item as a duplicate. Duplicates are logged at info level with
// event_type=duplicate_detected and never written. A fuzzy title check warns
// about likely title reuse but never changes the outcome.
package ingest
