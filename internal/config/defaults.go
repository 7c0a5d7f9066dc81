package config

const (
	defaultDataDir             = "~/.local/share/episodic"
	defaultLogRetentionDays    = 30
	defaultFeedTimeoutSeconds  = 30
	defaultFeedUserAgent       = "episodic/dev"
	defaultLLMBaseURL          = "https://api.openai.com/v1"
	defaultLLMModel            = "gpt-3.5-turbo"
	defaultLLMTimeoutSeconds   = 60
	defaultLLMRequestsPerMin   = 60
	defaultLLMMaxAttempts      = 3
	defaultCleanTemperature    = 0.3
	defaultTagTemperature      = 0.3
	defaultLockTimeoutSeconds  = 30
	defaultSimilarityThreshold = 0.9
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults. Directory and
// database paths left empty are derived from data_dir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Feed: Feed{
			TimeoutSeconds: defaultFeedTimeoutSeconds,
			UserAgent:      defaultFeedUserAgent,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			Model:             defaultLLMModel,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			RequestsPerMinute: defaultLLMRequestsPerMin,
			MaxAttempts:       defaultLLMMaxAttempts,
			CleanTemperature:  defaultCleanTemperature,
			TagTemperature:    defaultTagTemperature,
		},
		Workflow: Workflow{
			LockTimeoutSeconds:  defaultLockTimeoutSeconds,
			SimilarityThreshold: defaultSimilarityThreshold,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
