// Package tagging drives the tagging stage for cleaned episodes.
//
// Model suggestions are coerced into known taxonomy labels, the title
// override rules are applied by the validator's Normalize, and the result is
// validated once more before it is persisted. An episode whose tags still
// break a rule after normalization is reported as a validation failure and
// left untagged.
package tagging
