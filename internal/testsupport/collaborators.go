package testsupport

import (
	"context"
	"sync"

	"episodic/internal/taxonomy"
)

// StubRewriter is a scripted cleaning.Rewriter.
type StubRewriter struct {
	mu    sync.Mutex
	Fn    func(text string) (string, error)
	calls []string
}

// Rewrite records text and returns Fn's result, or text unchanged when Fn is nil.
func (s *StubRewriter) Rewrite(_ context.Context, text string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	if s.Fn == nil {
		return text, nil
	}
	return s.Fn(text)
}

// Calls returns the texts passed to Rewrite.
func (s *StubRewriter) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// StubSuggester is a scripted tagging.Suggester.
type StubSuggester struct {
	mu    sync.Mutex
	Fn    func(title, description string) (taxonomy.Suggestion, error)
	calls []string
}

// SuggestTags records title and returns Fn's result.
func (s *StubSuggester) SuggestTags(_ context.Context, title, description string) (taxonomy.Suggestion, error) {
	s.mu.Lock()
	s.calls = append(s.calls, title)
	s.mu.Unlock()
	if s.Fn == nil {
		return taxonomy.Suggestion{}, nil
	}
	return s.Fn(title, description)
}

// Calls returns the titles passed to SuggestTags.
func (s *StubSuggester) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
