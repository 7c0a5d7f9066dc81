package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrService, "cleaning", "rewrite", "model call failed", base)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrService)
	assert.ErrorIs(t, err, base)
	for _, fragment := range []string{"cleaning", "rewrite", "model call failed"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	assert.ErrorIs(t, err, services.ErrService)
	assert.Contains(t, err.Error(), "service failure")
}

func TestMarker(t *testing.T) {
	fetchErr := services.Wrap(services.ErrFetch, "ingest", "fetch", "unreachable", errors.New("dial"))
	assert.Equal(t, services.ErrFetch, services.Marker(fetchErr))
	assert.Nil(t, services.Marker(errors.New("plain")))
	assert.Nil(t, services.Marker(nil))
}

func TestContextHelpers(t *testing.T) {
	ctx := services.WithEpisodeID(t.Context(), 42)
	ctx = services.WithStage(ctx, "tag")
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithEnvironment(ctx, "test")

	id, ok := services.EpisodeIDFromContext(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 42, id)

	stage, ok := services.StageFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "tag", stage)

	runID, ok := services.RunIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "run-1", runID)

	env, ok := services.EnvironmentFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "test", env)

	_, ok = services.StageFromContext(services.WithStage(t.Context(), ""))
	assert.False(t, ok)
}
