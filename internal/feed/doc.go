// Package feed fetches the upstream podcast RSS feed and turns its items into
// RawEpisode values.
//
// Fetching uses net/http with the configured timeout and user agent; parsing
// is delegated to gofeed so RSS, Atom and iTunes extensions are handled
// uniformly. Items without a title are skipped with a warning, and malformed
// link or enclosure URLs are dropped rather than stored.
package feed
