package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCleaning(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.TestPath == "" || c.Database.ProdPath == "" {
		return errors.New("database.test_path and database.prod_path must be set")
	}
	if c.Database.TestPath == c.Database.ProdPath {
		return errors.New("database.test_path and database.prod_path must differ")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if c.Feed.TimeoutSeconds <= 0 {
		return errors.New("feed.timeout_seconds must be positive")
	}
	if c.Feed.URL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Feed.URL)
	if err != nil {
		return fmt.Errorf("feed.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("feed.url must be an http(s) URL, got %q", c.Feed.URL)
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":     c.LLM.TimeoutSeconds,
		"llm.requests_per_minute": c.LLM.RequestsPerMinute,
		"llm.max_attempts":        c.LLM.MaxAttempts,
	}); err != nil {
		return err
	}
	for key, value := range map[string]float64{
		"llm.clean_temperature": c.LLM.CleanTemperature,
		"llm.tag_temperature":   c.LLM.TagTemperature,
	} {
		if value < 0 || value > 2 {
			return fmt.Errorf("%s must be between 0 and 2", key)
		}
	}
	return nil
}

func (c *Config) validateCleaning() error {
	for _, pattern := range c.Cleaning.ExtraPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("cleaning.extra_patterns: %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.LockTimeoutSeconds < 0 {
		return errors.New("workflow.lock_timeout_seconds must not be negative")
	}
	if c.Workflow.SimilarityThreshold <= 0 || c.Workflow.SimilarityThreshold > 1 {
		return errors.New("workflow.similarity_threshold must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
