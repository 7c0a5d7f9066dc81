package taxonomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"episodic/internal/taxonomy"
)

func TestEpisodeNumber(t *testing.T) {
	cases := []struct {
		title string
		want  int
		ok    bool
	}{
		{"#123 The Fall of Rome", 123, true},
		{"Episode 45: The Norman Conquest", 45, true},
		{"Ep. 7 - The Black Death", 7, true},
		{"Ep 12 The Tudors", 12, true},
		{"The Battle of Britain (Ep 3)", 3, true},
		{"Napoleon Part 4", 4, true},
		{"The Cold War (Part 2)", 2, true},
		{"The Crusades - Part 5", 5, true},
		{"E15 The Vikings", 15, true},
		{"Young Churchill (3)", 3, true},
		{"The End of the War (1945)", 0, false},
		{"A History of Deep Time", 0, false},
	}
	for _, tc := range cases {
		got, ok := taxonomy.EpisodeNumber(tc.title)
		assert.Equal(t, tc.ok, ok, tc.title)
		assert.Equal(t, tc.want, got, tc.title)
	}
}

func TestClassify(t *testing.T) {
	v := taxonomy.NewValidator(taxonomy.Default(), "Young Churchill")
	cases := map[string]taxonomy.TitleKind{
		"RIHC: Caligula":                   taxonomy.TitleRIHC,
		"  RIHC: The Borgias Part 2":       taxonomy.TitleRIHC,
		"rihc: lowercase is not the marker": taxonomy.TitleStandalone,
		"Napoleon Part 4":                  taxonomy.TitleSeries,
		"The Wars of the Roses: Part II":   taxonomy.TitleSeries,
		"The Cold War (2 of 3)":            taxonomy.TitleSeries,
		"Episode 5: Into the Trenches":     taxonomy.TitleSeries,
		"Young Churchill: Boer War":        taxonomy.TitleSeries,
		"Young Churchillian Politics":      taxonomy.TitleStandalone,
		"#123 The Fall of Rome":            taxonomy.TitleStandalone,
		"The Battle of Hastings":           taxonomy.TitleStandalone,
		"The End of the War (1945)":        taxonomy.TitleStandalone,
	}
	for title, want := range cases {
		assert.Equal(t, want, v.Classify(title), title)
	}
	assert.Equal(t, "series", taxonomy.TitleSeries.String())
}
