package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"episodic/internal/config"
	"episodic/internal/services/llm"
	"episodic/internal/store"
)

// CheckLLM verifies that the model API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, cfg config.LLM) Result {
	const name = "LLM API"
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	llmCfg := llm.ConfigFrom(cfg)
	llmCfg.MaxAttempts = 1
	llmCfg.RequestsPerMinute = 0
	if err := llm.NewClient(llmCfg).HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", cfg.Model)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore reports whether the episode database for target is usable. A
// database that does not exist yet passes when its directory is writable,
// since the first command creates it.
func CheckStore(ctx context.Context, target config.StoreTarget) Result {
	name := fmt.Sprintf("Database (%s)", target.Environment)
	if strings.TrimSpace(target.Path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	if _, err := os.Stat(target.Path); errors.Is(err, os.ErrNotExist) {
		dir := CheckDirectoryAccess(name, filepath.Dir(target.Path))
		if !dir.Passed {
			return dir
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", target.Path)}
	}

	st, err := store.Open(ctx, target)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", target.Path, err)}
	}
	defer st.Close()

	health := st.CheckHealth(ctx)
	if !health.Healthy() {
		detail := health.Error
		if detail == "" {
			detail = health.Integrity
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", target.Path, detail)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d)", target.Path, health.SchemaVersion)}
}

// CheckFeedURL verifies a feed URL is configured and well formed.
func CheckFeedURL(cfg config.Feed) Result {
	const name = "Feed URL"
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return Result{Name: name, Detail: "not set (RSS_FEED_URL or feed.url)"}
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: malformed)", raw)}
	}
	return Result{Name: name, Passed: true, Detail: parsed.Host}
}

// CheckAPIKey verifies an API key is configured without contacting the API.
func CheckAPIKey(cfg config.LLM) Result {
	const name = "LLM API key"
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return Result{Name: name, Detail: "not set (OPENAI_API_KEY or llm.api_key)"}
	}
	return Result{Name: name, Passed: true, Detail: "set (" + maskKey(key) + ")"}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// summarizeLLMError produces a human-readable summary for model health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
