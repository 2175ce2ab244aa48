package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no user id can be resolved from
	// the session store.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrValidation indicates the local answer form failed its rules; no
	// network call was made.
	ErrValidation = errors.New("form validation failed")
	// ErrUnknownField is returned when a value is assigned to a field id the
	// current form does not contain.
	ErrUnknownField = errors.New("unknown form field")
	// ErrWorkflowClosed is returned by operations invoked after the owning
	// screen was torn down.
	ErrWorkflowClosed = errors.New("workflow closed")
	// ErrSectionNotFound indicates a section index or key outside the catalog.
	ErrSectionNotFound = errors.New("section not found")
)

// EnvelopeError is a well-formed API response with success=false. Message
// carries the server-supplied reason when present.
type EnvelopeError struct {
	Op      string
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request refused", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// ServerMessage returns the server-supplied message or the given fallback.
func (e *EnvelopeError) ServerMessage(fallback string) string {
	if e.Message == "" {
		return fallback
	}
	return e.Message
}
