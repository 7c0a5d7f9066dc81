// Package textutil provides the text fingerprinting used to spot episode
// titles that look reused under a different guid.
//
// Fingerprints are term-frequency vectors. Tokenization folds case,
// strips diacritics, splits on anything that is not a letter or digit, and
// drops single-character tokens. A Corpus of recent titles supplies IDF
// weights so that words every episode shares ("episode", the show name)
// contribute little to the score.
package textutil
