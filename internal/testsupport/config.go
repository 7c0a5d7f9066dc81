package testsupport

import (
	"path/filepath"
	"testing"

	"episodic/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ReportsDir = filepath.Join(base, "reports")
	cfgVal.Paths.ExportsDir = filepath.Join(base, "exports")
	cfgVal.Database.TestPath = filepath.Join(base, "test_episodes.db")
	cfgVal.Database.ProdPath = filepath.Join(base, "episodes.db")
	cfgVal.Feed.URL = "http://127.0.0.1:0/feed.xml"
	cfgVal.LLM.APIKey = "test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithFeedURL points the test config at a feed, usually an httptest server.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.URL = url
	}
}

// WithLLMBaseURL points the test config at a fake chat completions server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithNamedSeries registers series names for title classification.
func WithNamedSeries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Taxonomy.NamedSeries = names
	}
}
