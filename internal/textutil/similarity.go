package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	score := dot / (a.norm * b.norm)
	if score > 1 {
		return 1
	}
	return score
}

// Match is the closest candidate found by BestMatch.
type Match struct {
	Index int
	Score float64
}

// BestMatch scores target against every candidate using IDF weights drawn
// from the candidates plus the target. Identical strings after folding always
// score 1. It returns Index -1 when nothing shares a token with target.
func BestMatch(target string, candidates []string) Match {
	best := Match{Index: -1}
	targetFP := NewFingerprint(target)
	if targetFP == nil || len(candidates) == 0 {
		return best
	}

	corpus := NewCorpus()
	corpus.Add(targetFP)
	fps := make([]*Fingerprint, len(candidates))
	for i, candidate := range candidates {
		fps[i] = NewFingerprint(candidate)
		corpus.Add(fps[i])
	}
	idf := corpus.IDF()
	weightedTarget := targetFP.WithIDF(idf)
	folded := Fold(target)

	for i, fp := range fps {
		var score float64
		if Fold(candidates[i]) == folded {
			score = 1
		} else {
			score = CosineSimilarity(weightedTarget, fp.WithIDF(idf))
		}
		if score > best.Score {
			best = Match{Index: i, Score: score}
		}
	}
	return best
}
