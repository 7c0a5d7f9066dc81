package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"episodic/internal/taxonomy"
)

// decodeSuggestion accepts the documented format_tags/theme_tags/track_tags
// keys as well as common variants (format, Format, "formats") and tolerates a
// single string where an array is expected.
func decodeSuggestion(content string) (taxonomy.Suggestion, error) {
	var raw map[string]json.RawMessage
	if err := DecodeLLMJSON(content, &raw); err != nil {
		return taxonomy.Suggestion{}, err
	}
	var s taxonomy.Suggestion
	for key, value := range raw {
		values, err := stringList(value)
		if err != nil {
			return taxonomy.Suggestion{}, fmt.Errorf("field %q: %w", key, err)
		}
		switch suggestionKey(key) {
		case "format":
			s.Format = append(s.Format, values...)
		case "theme":
			s.Theme = append(s.Theme, values...)
		case "track":
			s.Track = append(s.Track, values...)
		}
	}
	if len(s.Format)+len(s.Theme)+len(s.Track) == 0 {
		return taxonomy.Suggestion{}, errors.New("no tags in payload")
	}
	return s, nil
}

func suggestionKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.TrimSuffix(key, "_tags")
	key = strings.TrimSuffix(key, "tags")
	key = strings.TrimSuffix(key, "s")
	return strings.Trim(key, "_ ")
}

func stringList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	}
	var null any
	if err := json.Unmarshal(raw, &null); err == nil && null == nil {
		return nil, nil
	}
	return nil, errors.New("expected a string or an array of strings")
}

// DecodeLLMJSON decodes JSON from an LLM response, handling common formatting quirks.
func DecodeLLMJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}

	sanitizedErr := json.Unmarshal([]byte(sanitized), target)
	if sanitizedErr == nil {
		return nil
	}
	return fmt.Errorf("%w (sanitized payload snippet: %s)", sanitizedErr, summarizePayloadSnippet(sanitized))
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func summarizePayloadSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
