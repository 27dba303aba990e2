package types

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidSourceID   = errors.New("invalid source ID")
	ErrInvalidSourceName = errors.New("invalid source name")
	ErrInvalidBaseURL    = errors.New("invalid base URL")

	// Request errors
	ErrEmptyQuery = errors.New("empty search query")

	// Source errors
	ErrSourceNotFound = errors.New("source not found")
	ErrSourceTimeout  = errors.New("source timed out")
)

// SourceError wraps a failure of one source's fetch. It never escapes
// the orchestrator's per-source boundary during SearchAll.
type SourceError struct {
	Source  SourceID
	Code    string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Source, e.Code, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
