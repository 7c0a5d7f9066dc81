package config

import (
	"fmt"
	"strings"
)

// Environment names one of the two disjoint storage spaces.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentProd Environment = "prod"
)

// EnvironmentFromFlag maps the --prod flag onto an Environment.
func EnvironmentFromFlag(prod bool) Environment {
	if prod {
		return EnvironmentProd
	}
	return EnvironmentTest
}

// ParseEnvironment accepts "test", "prod", or "production".
func ParseEnvironment(value string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "test":
		return EnvironmentTest, nil
	case "prod", "production":
		return EnvironmentProd, nil
	default:
		return "", fmt.Errorf("unknown environment %q", value)
	}
}

// StoreTarget is the immutable storage selection handed to the episode store.
// A run resolves it once and never addresses the other environment.
type StoreTarget struct {
	Environment Environment
	Path        string
}

// LockPath returns the advisory lock file guarding the target.
func (t StoreTarget) LockPath() string {
	return t.Path + ".lock"
}

// StoreTarget resolves the storage target for env.
func (c *Config) StoreTarget(env Environment) StoreTarget {
	if env == EnvironmentProd {
		return StoreTarget{Environment: EnvironmentProd, Path: c.Database.ProdPath}
	}
	return StoreTarget{Environment: EnvironmentTest, Path: c.Database.TestPath}
}
