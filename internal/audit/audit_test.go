package audit_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"episodic/internal/audit"
	"episodic/internal/services"
	"episodic/internal/taxonomy"
	"episodic/internal/testsupport"
)

func TestAuditReportsViolations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := services.WithRunID(context.Background(), "run-1")

	good := testsupport.SeedCleaned(t, st, "g1", "The Battle of Hastings", "Norman conquest.")
	require.NoError(t, st.UpdateTags(ctx, good.ID, taxonomy.NewTagSet(
		taxonomy.StandaloneEpisodes, "Military History & Battles", "Military & Battles Track",
	)))

	bad := testsupport.SeedCleaned(t, st, "g2", "RIHC: Rome Revisited", "Bonus.")
	require.NoError(t, st.UpdateTags(ctx, bad.ID, taxonomy.NewTagSet(
		taxonomy.StandaloneEpisodes, "Ancient & Classical Civilizations",
	)))

	testsupport.SeedEpisode(t, st, "g3", "Untagged Episode", "Pending.")

	report, err := audit.NewAuditor(st, nil, nil).Run(ctx, audit.Options{})
	require.NoError(t, err)

	assert.Equal(t, "test", report.Environment)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, taxonomy.Default().Version(), report.TaxonomyVersion)
	assert.Equal(t, 3, report.TotalEpisodes)
	assert.Equal(t, 2, report.Audited)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, bad.ID, res.EpisodeID)
	var rules []taxonomy.RuleID
	for _, v := range res.Violations {
		rules = append(rules, v.Rule)
	}
	assert.Contains(t, rules, taxonomy.RuleRIHCFormat)
	assert.Contains(t, rules, taxonomy.RuleTrackCardinality)
	assert.Equal(t, len(res.Violations), report.TotalIssues)
}

func TestAuditIncludeUntagged(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	untagged := testsupport.SeedEpisode(t, st, "g1", "Untagged Episode", "Pending.")

	report, err := audit.NewAuditor(st, nil, nil).Run(context.Background(), audit.Options{IncludeUntagged: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Audited)
	require.Len(t, report.Results, 1)
	assert.Equal(t, untagged.ID, report.Results[0].EpisodeID)
	assert.Equal(t, []string{}, report.Results[0].Tags)
}

func TestAuditEmptyStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	report, err := audit.NewAuditor(st, nil, nil).Run(context.Background(), audit.Options{})
	require.NoError(t, err)
	assert.Zero(t, report.TotalIssues)
	assert.NotNil(t, report.Results)
}

func TestReportWrite(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	path := audit.DefaultPath(filepath.Join(t.TempDir(), "reports"), at)
	assert.Equal(t, "validation_report_20240309_140506.json", filepath.Base(path))

	report := &audit.Report{
		GeneratedAt:     at,
		Environment:     "prod",
		TaxonomyVersion: "2024.1",
		TotalEpisodes:   1,
		Audited:         1,
		TotalIssues:     1,
		Results: []audit.EpisodeResult{{
			EpisodeID: 7,
			Title:     "Part 2: The Fall",
			Tags:      []string{taxonomy.StandaloneEpisodes},
			Violations: []taxonomy.Violation{{
				Rule:    taxonomy.RuleSeriesFormat,
				Message: "series title requires \"Series Episodes\"",
			}},
		}},
	}
	require.NoError(t, report.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "prod", decoded["environment"])
	assert.EqualValues(t, 1, decoded["total_issues"])
	results := decoded["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.EqualValues(t, 7, first["episode_id"])
	violations := first["violations"].([]any)
	assert.Equal(t, "series_format", violations[0].(map[string]any)["rule"])
}
