package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("not found")
	ErrReaderNil         = errors.New("reader is nil")
	ErrSummaryInProgress = errors.New("a summary for this document is already in progress")
	ErrNoSession         = errors.New("no active session")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
