package cleaning_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/cleaning"
	"episodic/internal/logging"
	"episodic/internal/stageexec"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
	"episodic/internal/testsupport"
)

func newDriver(t *testing.T, rewriter cleaning.Rewriter) (*cleaning.Driver, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rules, err := cleaning.NewRules(cfg.Cleaning.ExtraPatterns)
	require.NoError(t, err)
	return cleaning.NewDriver(st, rules, rewriter, logging.NewNop()), st
}

func TestCleanPendingEpisodes(t *testing.T) {
	rewriter := &testsupport.StubRewriter{Fn: func(text string) (string, error) {
		return "  " + strings.ToUpper(text) + "\n", nil
	}}
	driver, st := newDriver(t, rewriter)
	ep := testsupport.SeedEpisode(t, st, "g-1", "One", "<p>hello</p><p>Support us on Patreon!</p>")

	report, err := driver.Run(t.Context(), cleaning.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(stageexec.StatusOK))
	assert.Equal(t, []string{"hello"}, rewriter.Calls())

	got, err := st.GetByID(t.Context(), ep.ID)
	require.NoError(t, err)
	assert.Equal(t, store.CleaningCleaned, got.CleaningStatus)
	require.NotNil(t, got.CleanedDescription)
	assert.Equal(t, "HELLO", *got.CleanedDescription)
	assert.Equal(t, "<p>hello</p><p>Support us on Patreon!</p>", got.Description, "original description is preserved")
}

func TestEmptyAfterRulesSkipsRewriter(t *testing.T) {
	rewriter := &testsupport.StubRewriter{}
	driver, st := newDriver(t, rewriter)
	ep := testsupport.SeedEpisode(t, st, "g-1", "One", "<p>Like and subscribe!</p>")
	blank := testsupport.SeedEpisode(t, st, "g-2", "Two", "")

	report, err := driver.Run(t.Context(), cleaning.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(stageexec.StatusOK))
	assert.Empty(t, rewriter.Calls())

	for _, id := range []int64{ep.ID, blank.ID} {
		got, err := st.GetByID(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, store.CleaningCleaned, got.CleaningStatus)
		require.NotNil(t, got.CleanedDescription)
		assert.Empty(t, *got.CleanedDescription)
	}
}

func TestRewriteFailureLeavesEpisodePending(t *testing.T) {
	rewriter := &testsupport.StubRewriter{Fn: func(string) (string, error) {
		return "", errors.New("upstream 503")
	}}
	driver, st := newDriver(t, rewriter)
	ep := testsupport.SeedEpisode(t, st, "g-1", "One", "Some description")

	report, err := driver.Run(t.Context(), cleaning.Options{})
	require.NoError(t, err, "batch runs do not fail on one episode")
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, stageexec.KindService, report.Failures()[0].Kind)

	got, err := st.GetByID(t.Context(), ep.ID)
	require.NoError(t, err)
	assert.Equal(t, store.CleaningFailed, got.CleaningStatus)
	assert.Nil(t, got.CleanedDescription)

	var pending []int64
	for p, err := range st.Pending(t.Context(), store.StageClean, store.PendingOptions{}) {
		require.NoError(t, err)
		pending = append(pending, p.ID)
	}
	assert.Equal(t, []int64{ep.ID}, pending)

	// A later successful run recovers the episode.
	rewriter.Fn = nil
	_, err = driver.Run(t.Context(), cleaning.Options{})
	require.NoError(t, err)
	got, err = st.GetByID(t.Context(), ep.ID)
	require.NoError(t, err)
	assert.Equal(t, store.CleaningCleaned, got.CleaningStatus)
}

func TestEmptyRewriteIsServiceFailure(t *testing.T) {
	rewriter := &testsupport.StubRewriter{Fn: func(string) (string, error) { return "  ", nil }}
	driver, st := newDriver(t, rewriter)
	testsupport.SeedEpisode(t, st, "g-1", "One", "text")

	report, err := driver.Run(t.Context(), cleaning.Options{})
	require.NoError(t, err)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, stageexec.KindService, report.Failures()[0].Kind)
}

func TestAlreadyCleanedIsSkippedUnlessForced(t *testing.T) {
	rewriter := &testsupport.StubRewriter{Fn: func(string) (string, error) { return "second pass", nil }}
	driver, st := newDriver(t, rewriter)
	ep := testsupport.SeedCleaned(t, st, "g-1", "One", "first pass")

	report, err := driver.Run(t.Context(), cleaning.Options{ID: ep.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(stageexec.StatusSkipped))
	assert.Empty(t, rewriter.Calls())

	report, err = driver.Run(t.Context(), cleaning.Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(stageexec.StatusOK))
	got, err := st.GetByID(t.Context(), ep.ID)
	require.NoError(t, err)
	assert.Equal(t, "second pass", *got.CleanedDescription)
}

func TestForcedRecleanFailureKeepsTaggedEpisode(t *testing.T) {
	rewriter := &testsupport.StubRewriter{Fn: func(string) (string, error) { return "", errors.New("timeout") }}
	driver, st := newDriver(t, rewriter)
	ep := testsupport.SeedCleaned(t, st, "g-1", "One", "kept")
	tags := taxonomy.NewTagSet(taxonomy.StandaloneEpisodes)
	require.NoError(t, st.UpdateTags(t.Context(), ep.ID, tags))

	report, err := driver.Run(t.Context(), cleaning.Options{ID: ep.ID, Force: true})
	require.NoError(t, err)
	require.Len(t, report.Failures(), 1)

	got, err := st.GetByID(t.Context(), ep.ID)
	require.NoError(t, err)
	assert.Equal(t, store.CleaningCleaned, got.CleaningStatus)
	assert.Equal(t, "kept", *got.CleanedDescription)
	assert.Equal(t, tags, got.Tags)
}

func TestUnknownIDReportsNotFound(t *testing.T) {
	driver, _ := newDriver(t, &testsupport.StubRewriter{})
	_, err := driver.Run(t.Context(), cleaning.Options{ID: 404})
	require.Error(t, err)
	assert.Equal(t, stageexec.KindNotFound, stageexec.Kind(err))
}
