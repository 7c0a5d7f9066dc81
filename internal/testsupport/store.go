package testsupport

import (
	"context"
	"testing"
	"time"

	"episodic/internal/config"
	"episodic/internal/store"
)

// MustOpenStore opens the test-environment store for cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...store.Option) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg.StoreTarget(config.EnvironmentTest), opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// StepClock returns a clock that advances by one millisecond per call,
// keeping creation order deterministic in tests.
func StepClock(start time.Time) func() time.Time {
	current := start.Add(-time.Millisecond)
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

// SeedEpisode inserts an episode with the given title and guid.
func SeedEpisode(t testing.TB, st *store.Store, guid, title, description string) *store.Episode {
	t.Helper()

	id, err := st.Insert(context.Background(), store.NewEpisode{
		GUID:        guid,
		Title:       title,
		Description: description,
	})
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	ep, err := st.GetByID(context.Background(), id)
	if err != nil || ep == nil {
		t.Fatalf("store.GetByID(%d): %v", id, err)
	}
	return ep
}

// SeedCleaned inserts an episode and marks it cleaned with text.
func SeedCleaned(t testing.TB, st *store.Store, guid, title, text string) *store.Episode {
	t.Helper()

	id := SeedEpisode(t, st, guid, title, text).ID
	if err := st.UpdateCleaning(context.Background(), id, text, store.CleaningCleaned); err != nil {
		t.Fatalf("store.UpdateCleaning: %v", err)
	}
	ep, err := st.GetByID(context.Background(), id)
	if err != nil || ep == nil {
		t.Fatalf("store.GetByID(%d): %v", id, err)
	}
	return ep
}
