// Package config loads, normalizes, and validates episodic configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RSS_FEED_URL and OPENAI_API_KEY. The Config type centralizes every knob the
// CLI needs, including the two disjoint storage targets (test and prod) that a
// run selects between exactly once at startup.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
