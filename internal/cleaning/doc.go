// Package cleaning drives the description cleaning stage: a deterministic
// rule pass followed by a model rewrite.
//
// The rule pass flattens HTML to text, strips promotional boilerplate and
// normalizes Unicode. Text that is empty after the rule pass is stored as an
// empty cleaned description without calling the rewriter. A rewrite failure
// marks the episode failed so the next clean run picks it up again, except
// when a forced re-clean fails on an already cleaned episode, which is left
// as it was.
package cleaning
