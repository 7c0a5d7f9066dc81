// Package taxonomy defines the three-dimension tag taxonomy (Format, Theme,
// Track) and the pure rule engine that checks a tag set against an episode
// title.
//
// Model output is loosely typed. Coerce converts it into a TagSet at the
// boundary so downstream code only ever handles known labels. The Validator
// both normalizes a tag set before it is persisted and audits stored sets;
// it never touches storage.
package taxonomy
