package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeLLM()
	if err := c.normalizeTaxonomy(); err != nil {
		return err
	}
	c.normalizeCleaning()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("EPISODIC_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	derived := []struct {
		key   string
		value *string
		leaf  string
	}{
		{"paths.log_dir", &c.Paths.LogDir, "logs"},
		{"paths.reports_dir", &c.Paths.ReportsDir, "reports"},
		{"paths.exports_dir", &c.Paths.ExportsDir, "exports"},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = filepath.Join(c.Paths.DataDir, d.leaf)
		}
		if *d.value, err = expandPath(*d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	if strings.TrimSpace(c.Database.TestPath) == "" {
		c.Database.TestPath = filepath.Join(c.Paths.DataDir, "test_episodes.db")
	}
	if strings.TrimSpace(c.Database.ProdPath) == "" {
		c.Database.ProdPath = filepath.Join(c.Paths.DataDir, "episodes.db")
	}
	var err error
	if c.Database.TestPath, err = expandPath(c.Database.TestPath); err != nil {
		return fmt.Errorf("database.test_path: %w", err)
	}
	if c.Database.ProdPath, err = expandPath(c.Database.ProdPath); err != nil {
		return fmt.Errorf("database.prod_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	if value, ok := os.LookupEnv("RSS_FEED_URL"); ok && strings.TrimSpace(value) != "" {
		c.Feed.URL = value
	}
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	c.Feed.UserAgent = strings.TrimSpace(c.Feed.UserAgent)
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = defaultFeedUserAgent
	}
	if c.Feed.TimeoutSeconds == 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.BaseURL = value
	}
	if value, ok := os.LookupEnv("OPENAI_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.Model = value
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
}

func (c *Config) normalizeTaxonomy() error {
	if strings.TrimSpace(c.Taxonomy.Path) != "" {
		var err error
		if c.Taxonomy.Path, err = expandPath(strings.TrimSpace(c.Taxonomy.Path)); err != nil {
			return fmt.Errorf("taxonomy.path: %w", err)
		}
	}
	c.Taxonomy.NamedSeries = compactStrings(c.Taxonomy.NamedSeries)
	return nil
}

func (c *Config) normalizeCleaning() {
	c.Cleaning.ExtraPatterns = compactStrings(c.Cleaning.ExtraPatterns)
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	if value, ok := os.LookupEnv("LOG_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Logging.File = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func compactStrings(values []string) []string {
	out := values[:0]
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
