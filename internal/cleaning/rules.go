package cleaning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// promoPatterns match promotional boilerplate up to the end of its line.
var promoPatterns = []string{
	`Subscribe to our newsletter.*?(?:\n|$)`,
	`Follow us on (?:Twitter|Facebook|Instagram).*?(?:\n|$)`,
	`Visit our website at.*?(?:\n|$)`,
	`Like and subscribe.*?(?:\n|$)`,
	`Don['’]t forget to rate and review.*?(?:\n|$)`,
	`Support us on Patreon.*?(?:\n|$)`,
	`Join our membership.*?(?:\n|$)`,
	`Check out our sponsors?:.*?(?:\n|$)`,
	`Use promo code.*?(?:\n|$)`,
	`Special offer.*?(?:\n|$)`,
	`\[advertisement\].*?\[/advertisement\]`,
	`This episode is sponsored by.*?(?:\n|$)`,
	`Thanks to our sponsors?.*?(?:\n|$)`,
	`Listen on (?:Spotify|Apple Podcasts|Google Podcasts).*?(?:\n|$)`,
	`🎧.*?(?:\n|$)`,
	`📱.*?(?:\n|$)`,
	`💰.*?(?:\n|$)`,
}

var (
	blockSelector  = "p, div, li, h1, h2, h3, h4, h5, h6, tr, blockquote, pre"
	inlineSpace    = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// Rules is the deterministic cleaning pass applied before the rewrite.
type Rules struct {
	promo *regexp.Regexp
}

// NewRules compiles the built-in promotional patterns plus extra. Each
// extra pattern is matched case-insensitively with . matching newlines.
func NewRules(extra []string) (*Rules, error) {
	patterns := append([]string(nil), promoPatterns...)
	for _, pattern := range extra {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("compile cleaning pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, pattern)
	}
	promo, err := regexp.Compile(`(?is)(?:` + strings.Join(patterns, `)|(?:`) + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile cleaning patterns: %w", err)
	}
	return &Rules{promo: promo}, nil
}

// Apply returns the rule-cleaned text for description.
func (r *Rules) Apply(description string) string {
	text := htmlToText(description)
	text = norm.NFC.String(text)
	text = r.promo.ReplaceAllString(text, "\n")
	return tidy(text)
}

// htmlToText flattens markup, keeping block boundaries as line breaks and
// link targets in parentheses after their text.
func htmlToText(src string) string {
	if !strings.ContainsAny(src, "<&") {
		return src
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src
	}
	doc.Find("script, style").Remove()
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		label := strings.TrimSpace(s.Text())
		if href == "" || strings.HasPrefix(href, "#") || href == label {
			return
		}
		if label == "" {
			s.SetText(href)
			return
		}
		s.SetText(label + " (" + href + ")")
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text()
}

// tidy collapses runs of spaces, trims each line and allows at most one
// blank line in a row.
func tidy(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
