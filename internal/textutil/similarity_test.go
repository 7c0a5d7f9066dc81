package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/textutil"
)

func TestTokenizeFoldsAndSplits(t *testing.T) {
	got := textutil.Tokenize("Café Society: Part II — a Story!")
	assert.Equal(t, []string{"cafe", "society", "part", "ii", "story"}, got)
	assert.Empty(t, textutil.Tokenize("a . b"))
}

func TestCosineSimilarityNil(t *testing.T) {
	fp := textutil.NewFingerprint("hello world")
	assert.Zero(t, textutil.CosineSimilarity(nil, nil))
	assert.Zero(t, textutil.CosineSimilarity(nil, fp))
	assert.Zero(t, textutil.CosineSimilarity(fp, nil))
	assert.Nil(t, textutil.NewFingerprint("!!"))
}

func TestCosineSimilarityBounds(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog"
	assert.InDelta(t, 1.0, textutil.CosineSimilarity(textutil.NewFingerprint(text), textutil.NewFingerprint(text)), 1e-9)
	assert.Zero(t, textutil.CosineSimilarity(textutil.NewFingerprint("apple banana"), textutil.NewFingerprint("dog frog")))

	partial := textutil.CosineSimilarity(textutil.NewFingerprint("the quick brown fox"), textutil.NewFingerprint("the slow brown cat"))
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestIDFDownweightsSharedTerms(t *testing.T) {
	corpus := textutil.NewCorpus()
	for _, title := range []string{"episode one", "episode two", "episode three"} {
		corpus.Add(textutil.NewFingerprint(title))
	}
	idf := corpus.IDF()
	require.NotNil(t, idf)
	assert.Less(t, idf["episode"], idf["one"])
	assert.Greater(t, idf["episode"], 0.0)
	assert.Nil(t, textutil.NewCorpus().IDF())
}

func TestBestMatch(t *testing.T) {
	candidates := []string{
		"Episode 12: The Harlem Renaissance",
		"Episode 13: Jazz Age Voices",
		"Bonus: Listener Mailbag",
	}

	exact := textutil.BestMatch("episode 12: the harlem renaissance", candidates)
	assert.Equal(t, 0, exact.Index)
	assert.InDelta(t, 1.0, exact.Score, 1e-9)

	near := textutil.BestMatch("Episode 13 - Jazz Age Voices (Rebroadcast)", candidates)
	assert.Equal(t, 1, near.Index)
	assert.Greater(t, near.Score, 0.5)

	none := textutil.BestMatch("Completely unrelated", candidates)
	assert.Equal(t, -1, none.Index)
	assert.Zero(t, none.Score)

	assert.Equal(t, -1, textutil.BestMatch("anything", nil).Index)
}
