package feed

import (
	"fmt"

	"episodic/internal/services"
)

// FetchError reports that the feed could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch feed %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

// Unwrap exposes the services.ErrFetch marker alongside the cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrFetch}
	}
	return []error{services.ErrFetch, e.Err}
}

// ParseError reports that the feed body could not be decoded.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

// Unwrap exposes the services.ErrParse marker alongside the cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrParse}
	}
	return []error{services.ErrParse, e.Err}
}
