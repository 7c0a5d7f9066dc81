package llm

import (
	"fmt"
	"strings"

	"episodic/internal/taxonomy"
)

const rewriteSystemPrompt = "You are a helpful assistant that cleans podcast episode descriptions."

const rewriteUserPrompt = `Clean the following podcast episode description by:
1. Removing promotional content, advertisements, and sponsor messages
2. Fixing any grammatical or formatting issues
3. Maintaining the core content and important information
4. Keeping the tone consistent with the original
5. Preserving any important links or references
6. Remove any references to social media platforms
7. Remove any producer or other credits

Description:
%s

Return only the cleaned description, nothing else.`

const tagSystemPrompt = "You are a podcast episode tagging assistant."

func buildRewritePrompt(text string) string {
	return fmt.Sprintf(rewriteUserPrompt, text)
}

func buildTagPrompt(tax *taxonomy.Taxonomy, title, description string) string {
	var b strings.Builder
	b.WriteString("Analyze this podcast episode and assign appropriate tags from each category.\n\n")
	fmt.Fprintf(&b, "Episode Title: %s\n", title)
	fmt.Fprintf(&b, "Episode Description: %s\n\n", description)

	sections := []struct {
		dim   taxonomy.Dimension
		title string
		rule  string
	}{
		{taxonomy.DimensionFormat, "Format", "choose 1-2"},
		{taxonomy.DimensionTheme, "Theme", "choose 1-3"},
		{taxonomy.DimensionTrack, "Track", "choose 1"},
	}
	for _, section := range sections {
		fmt.Fprintf(&b, "Available %s Tags (%s):\n", section.title, section.rule)
		for _, label := range tax.Labels(section.dim) {
			fmt.Fprintf(&b, "- %s", label.Name)
			if label.Description != "" {
				fmt.Fprintf(&b, ": %s", label.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(`Return your response as a JSON object with three arrays: format_tags, theme_tags, and track_tags.
Use the exact tag names from the lists above. Do not make up new tags.
Example response format:
{"format_tags": ["Standalone Episodes"], "theme_tags": ["Military History & Battles"], "track_tags": ["World Wars Track"]}`)
	return b.String()
}
