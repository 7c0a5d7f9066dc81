package preflight_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/config"
	"episodic/internal/preflight"
	"episodic/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	ok := preflight.CheckDirectoryAccess("test", t.TempDir())
	assert.True(t, ok.Passed, ok.Detail)

	missing := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	assert.False(t, missing.Passed)
	assert.Contains(t, missing.Detail, "does not exist")

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	notDir := preflight.CheckDirectoryAccess("test", file)
	assert.False(t, notDir.Passed)

	empty := preflight.CheckDirectoryAccess("test", "")
	assert.False(t, empty.Passed)
}

func TestCheckFeedURL(t *testing.T) {
	assert.False(t, preflight.CheckFeedURL(config.Feed{}).Passed)
	assert.False(t, preflight.CheckFeedURL(config.Feed{URL: "not a url"}).Passed)

	res := preflight.CheckFeedURL(config.Feed{URL: "https://feeds.example.com/history.xml"})
	assert.True(t, res.Passed)
	assert.Equal(t, "feeds.example.com", res.Detail)
}

func TestCheckAPIKeyMasksValue(t *testing.T) {
	assert.False(t, preflight.CheckAPIKey(config.LLM{}).Passed)

	res := preflight.CheckAPIKey(config.LLM{APIKey: "sk-abcdefghijklmnop"})
	assert.True(t, res.Passed)
	assert.NotContains(t, res.Detail, "abcdefghijkl")
	assert.Contains(t, res.Detail, "mnop")
}

func TestCheckStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	target := cfg.StoreTarget(config.EnvironmentTest)

	fresh := preflight.CheckStore(context.Background(), target)
	assert.True(t, fresh.Passed, fresh.Detail)
	assert.Contains(t, fresh.Detail, "not created yet")

	st := testsupport.MustOpenStore(t, cfg)
	require.NoError(t, st.Close())

	existing := preflight.CheckStore(context.Background(), target)
	assert.True(t, existing.Passed, existing.Detail)
	assert.Contains(t, existing.Detail, "schema v1")
}

func TestRunAllReportsMissingSettings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Feed.URL = ""
	cfg.LLM.APIKey = ""

	results := preflight.RunAll(context.Background(), cfg, cfg.StoreTarget(config.EnvironmentTest))
	require.Len(t, results, 6)

	failed := preflight.Failed(results)
	var names []string
	for _, r := range failed {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Feed URL", "LLM API key"}, names)
}

func TestRunAllNilConfig(t *testing.T) {
	assert.Nil(t, preflight.RunAll(context.Background(), nil, config.StoreTarget{}))
}

func TestCheckLLM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.Header.Get("Authorization"), "good-key") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"ok\":true}"}}]}`)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithLLMBaseURL(srv.URL))
	cfg.LLM.APIKey = "good-key"
	ok := preflight.CheckLLM(context.Background(), cfg.LLM)
	assert.True(t, ok.Passed, ok.Detail)

	cfg.LLM.APIKey = "bad-key"
	bad := preflight.CheckLLM(context.Background(), cfg.LLM)
	assert.False(t, bad.Passed)

	missing := preflight.CheckLLM(context.Background(), config.LLM{})
	assert.False(t, missing.Passed)
	assert.Equal(t, "API key missing", missing.Detail)
}
