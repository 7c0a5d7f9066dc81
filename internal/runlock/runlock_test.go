package runlock_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/config"
	"episodic/internal/runlock"
)

func testTarget(t *testing.T, env config.Environment) config.StoreTarget {
	t.Helper()
	return config.StoreTarget{Environment: env, Path: filepath.Join(t.TempDir(), "db", "episodes.db")}
}

func TestAcquireAndRelease(t *testing.T) {
	target := testTarget(t, config.EnvironmentTest)

	lock, err := runlock.Acquire(context.Background(), target, 0)
	require.NoError(t, err)
	assert.Equal(t, target.LockPath(), lock.Path())
	require.NoError(t, lock.Release())

	again, err := runlock.Acquire(context.Background(), target, 0)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestSecondAcquireTimesOut(t *testing.T) {
	target := testTarget(t, config.EnvironmentTest)

	held, err := runlock.Acquire(context.Background(), target, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release() })

	start := time.Now()
	_, err = runlock.Acquire(context.Background(), target, 300*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, runlock.ErrLocked)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)

	_, err = runlock.Acquire(context.Background(), target, 0)
	assert.ErrorIs(t, err, runlock.ErrLocked)
}

func TestTargetsLockIndependently(t *testing.T) {
	dir := t.TempDir()
	testDB := config.StoreTarget{Environment: config.EnvironmentTest, Path: filepath.Join(dir, "test.db")}
	prodDB := config.StoreTarget{Environment: config.EnvironmentProd, Path: filepath.Join(dir, "prod.db")}

	a, err := runlock.Acquire(context.Background(), testDB, 0)
	require.NoError(t, err)
	defer a.Release()

	b, err := runlock.Acquire(context.Background(), prodDB, 0)
	require.NoError(t, err)
	defer b.Release()
}

func TestReleaseNil(t *testing.T) {
	var lock *runlock.Lock
	assert.NoError(t, lock.Release())
}
