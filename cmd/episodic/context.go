package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"episodic/internal/config"
	"episodic/internal/logging"
	"episodic/internal/runlock"
	"episodic/internal/services"
	"episodic/internal/services/llm"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
)

type commandContext struct {
	configFlag   *string
	prodFlag     *bool
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, prodFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		prodFlag:     prodFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) environment() config.Environment {
	return config.EnvironmentFromFlag(c.prodFlag != nil && *c.prodFlag)
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return *c.logLevelFlag
}

// runEnv carries everything one command invocation needs.
type runEnv struct {
	ctx    context.Context
	cfg    *config.Config
	target config.StoreTarget
	logger *slog.Logger
	runID  string
	store  *store.Store
	lock   *runlock.Lock
}

// startRun resolves config, builds the logger and run context, and takes the
// run lock for the selected database when lock is set. Callers must call
// close.
func (c *commandContext) startRun(cmd *cobra.Command, lock bool) (*runEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, c.logLevel(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	target := cfg.StoreTarget(c.environment())
	runID := uuid.NewString()
	ctx := services.WithRunID(cmd.Context(), runID)
	ctx = services.WithEnvironment(ctx, string(target.Environment))

	env := &runEnv{
		ctx:    ctx,
		cfg:    cfg,
		target: target,
		logger: logger,
		runID:  runID,
	}
	if lock {
		timeout := time.Duration(cfg.Workflow.LockTimeoutSeconds) * time.Second
		env.lock, err = runlock.Acquire(ctx, target, timeout)
		if err != nil {
			return nil, err
		}
	}

	if removed := logging.PruneOldFiles(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "*.log*", cfg.LogFilePath()); removed > 0 {
		logger.Debug("pruned old log files", logging.Int("removed", removed))
	}
	logging.WithContext(ctx, logger).Debug("command started",
		logging.String("command", cmd.CommandPath()),
		logging.String("database", target.Path),
	)
	return env, nil
}

// openStore opens the selected database.
func (e *runEnv) openStore() (*store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	st, err := store.Open(e.ctx, e.target)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", e.target.Environment, err)
	}
	e.store = st
	return st, nil
}

func (e *runEnv) close() {
	if e == nil {
		return
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("close store failed", logging.Error(err))
		}
	}
	if e.lock != nil {
		if err := e.lock.Release(); err != nil {
			e.logger.Warn("release run lock failed", logging.Error(err))
		}
	}
}

func (e *runEnv) taxonomy() (*taxonomy.Taxonomy, error) {
	if path := e.cfg.Taxonomy.Path; path != "" {
		tax, err := taxonomy.Load(path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "", "taxonomy", path, err)
		}
		return tax, nil
	}
	return taxonomy.Default(), nil
}

func (e *runEnv) llmClient(tax *taxonomy.Taxonomy) (*llm.Client, error) {
	if err := e.cfg.RequireLLM(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "llm", "", err)
	}
	return llm.NewClient(llm.ConfigFrom(e.cfg.LLM),
		llm.WithTaxonomy(tax),
		llm.WithLogger(e.logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
