package export_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/export"
	"episodic/internal/services"
	"episodic/internal/store"
	"episodic/internal/taxonomy"
	"episodic/internal/testsupport"
)

func seedStore(t *testing.T) (*store.Store, *export.Exporter) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg, store.WithClock(testsupport.StepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()

	older := time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	n := 12

	_, err := st.Insert(ctx, store.NewEpisode{
		GUID:          "g-old",
		Title:         "Old, \"quoted\" episode",
		Description:   "Line one\nLine two",
		Link:          "https://example.com/old",
		PublishedDate: &older,
		Duration:      "00:42:00",
	})
	require.NoError(t, err)

	newID, err := st.Insert(ctx, store.NewEpisode{
		GUID:          "g-new",
		Title:         "Episode 12: The New One",
		Description:   "<p>Fresh</p>",
		PublishedDate: &newer,
		AudioURL:      "https://example.com/new.mp3",
		EpisodeNumber: &n,
	})
	require.NoError(t, err)
	require.NoError(t, st.UpdateCleaning(ctx, newID, "Fresh", store.CleaningCleaned))
	require.NoError(t, st.UpdateTags(ctx, newID, taxonomy.NewTagSet(
		taxonomy.SeriesEpisodes, "Military History & Battles", "World Wars Track",
	)))

	_, err = st.Insert(ctx, store.NewEpisode{Title: "Undated"})
	require.NoError(t, err)

	return st, export.NewExporter(st, nil)
}

func TestJSONRoundTrip(t *testing.T) {
	st, exporter := seedStore(t)

	var buf bytes.Buffer
	count, err := exporter.Export(context.Background(), export.Options{Format: export.FormatJSON}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	episodes, err := st.SelectForExport(context.Background(), store.ExportFilter{})
	require.NoError(t, err)
	want := export.Records(episodes, export.Columns())

	got, err := export.ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, "Episode 12: The New One", got[0]["title"])
	assert.Equal(t, "Undated", got[2]["title"])
	assert.Equal(t, int64(12), got[0]["episode_number"])
	assert.Equal(t, []string{taxonomy.SeriesEpisodes, "Military History & Battles", "World Wars Track"}, got[0]["tags"])
	assert.Nil(t, got[1]["tags"])
}

func TestCSVRoundTrip(t *testing.T) {
	st, exporter := seedStore(t)

	var buf bytes.Buffer
	_, err := exporter.Export(context.Background(), export.Options{Format: export.FormatCSV}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"[""Series Episodes"",""Military History & Battles"",""World Wars Track""]"`)

	episodes, err := st.SelectForExport(context.Background(), store.ExportFilter{})
	require.NoError(t, err)
	want := export.Records(episodes, export.Columns())

	got, err := export.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "Line one\nLine two", got[1]["description"])
}

func TestCSVRoundTripKeepsEmptyCleanedDescription(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id, err := st.Insert(ctx, store.NewEpisode{GUID: "g-promo", Title: "All Promo", Description: "Follow us on Instagram"})
	require.NoError(t, err)
	require.NoError(t, st.UpdateCleaning(ctx, id, "", store.CleaningCleaned))
	_, err = st.Insert(ctx, store.NewEpisode{GUID: "g-raw", Title: "Not Cleaned Yet", Description: "raw"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = export.NewExporter(st, nil).Export(ctx, export.Options{Format: export.FormatCSV}, &buf)
	require.NoError(t, err)

	episodes, err := st.SelectForExport(ctx, store.ExportFilter{})
	require.NoError(t, err)
	want := export.Records(episodes, export.Columns())

	got, err := export.ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	for _, record := range got {
		switch record["guid"] {
		case "g-promo":
			assert.Equal(t, "", record["cleaned_description"])
		case "g-raw":
			assert.Nil(t, record["cleaned_description"])
		}
	}
}

func TestFieldSelectionAndLimit(t *testing.T) {
	_, exporter := seedStore(t)

	var buf bytes.Buffer
	count, err := exporter.Export(context.Background(), export.Options{
		Format: export.FormatCSV,
		Fields: []string{"id", "Title", "title", "tags"},
		Filter: store.ExportFilter{Limit: 2},
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := export.ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 3)
	assert.Contains(t, got[0], "tags")
	assert.NotContains(t, got[0], "description")
}

func TestUnknownFieldRejected(t *testing.T) {
	_, exporter := seedStore(t)

	_, err := exporter.Export(context.Background(), export.Options{Fields: []string{"title", "rating"}}, &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "rating")
}

func TestStatusFilter(t *testing.T) {
	_, exporter := seedStore(t)

	var buf bytes.Buffer
	count, err := exporter.Export(context.Background(), export.Options{
		Filter: store.ExportFilter{Statuses: []store.CleaningStatus{store.CleaningCleaned}},
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExportFileAndDefaultPath(t *testing.T) {
	_, exporter := seedStore(t)

	at := time.Date(2024, 6, 30, 23, 59, 1, 0, time.UTC)
	path := export.DefaultPath(filepath.Join(t.TempDir(), "exports"), export.FormatCSV, at)
	assert.Equal(t, "podcast_episodes_20240630_235901.csv", filepath.Base(path))

	count, err := exporter.ExportFile(context.Background(), export.Options{Format: export.FormatCSV}, path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := export.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestEmptyJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.Columns(), nil))
	assert.Equal(t, "[]\n", buf.String())

	records, err := export.ReadJSON(&buf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	_, err = export.ParseFormat("xml")
	assert.ErrorIs(t, err, services.ErrValidation)
}
