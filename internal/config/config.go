package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	ReportsDir string `toml:"reports_dir"`
	ExportsDir string `toml:"exports_dir"`
}

// Database contains the locations of the two disjoint episode stores.
type Database struct {
	TestPath string `toml:"test_path"`
	ProdPath string `toml:"prod_path"`
}

// Feed contains configuration for the upstream RSS feed.
type Feed struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// LLM contains the OpenAI-compatible connection settings shared by the
// cleaning and tagging collaborators.
type LLM struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	MaxAttempts       int     `toml:"max_attempts"`
	CleanTemperature  float64 `toml:"clean_temperature"`
	TagTemperature    float64 `toml:"tag_temperature"`
}

// Cleaning contains configuration for the rule-based description pass.
type Cleaning struct {
	// ExtraPatterns are additional case-insensitive regular expressions
	// removed before the rewrite collaborator runs.
	ExtraPatterns []string `toml:"extra_patterns"`
}

// Taxonomy contains configuration for the tag taxonomy.
type Taxonomy struct {
	// Path optionally points at a replacement taxonomy TOML file. Empty
	// selects the embedded taxonomy.
	Path string `toml:"path"`
	// NamedSeries lists series names whose episodes count as series
	// episodes even without a part marker in the title.
	NamedSeries []string `toml:"named_series"`
}

// Workflow contains run-level knobs.
type Workflow struct {
	LockTimeoutSeconds  int     `toml:"lock_timeout_seconds"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	File          string `toml:"file"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for episodic.
//
// Configuration sections by subsystem:
//   - Paths: data, log, report, and export directories
//   - Database: test and production store locations
//   - Feed: upstream RSS feed
//   - LLM: rewrite and tagging model connection
//   - Cleaning: extra promotional patterns
//   - Taxonomy: taxonomy source and named series
//   - Workflow: run lock and duplicate heuristics
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Database Database `toml:"database"`
	Feed     Feed     `toml:"feed"`
	LLM      LLM      `toml:"llm"`
	Cleaning Cleaning `toml:"cleaning"`
	Taxonomy Taxonomy `toml:"taxonomy"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/episodic/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("episodic.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, report, and export directories plus
// the parent directories of both database files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.LogDir,
		c.Paths.ReportsDir,
		c.Paths.ExportsDir,
		filepath.Dir(c.Database.TestPath),
		filepath.Dir(c.Database.ProdPath),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogFilePath returns the file that receives log output alongside stderr.
func (c *Config) LogFilePath() string {
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		return file
	}
	return filepath.Join(c.Paths.LogDir, "episodic.log")
}

// RequireFeedURL reports a configuration error when no feed URL is known.
func (c *Config) RequireFeedURL() error {
	if strings.TrimSpace(c.Feed.URL) == "" {
		return fmt.Errorf("feed.url is required. Set RSS_FEED_URL, pass --feed, or edit the config (create with 'episodic config init')")
	}
	return nil
}

// RequireLLM reports a configuration error when the model API cannot be used.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY or edit the config (create with 'episodic config init')")
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
