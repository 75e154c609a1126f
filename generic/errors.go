/*
errors.go - Centralized error types shared by every feature module

PURPOSE:
  All error types in one place for consistency and discoverability.
  Feature packages (hr, climate, disc, risk, ...) return these errors,
  wrapped with context, and the API layer maps them to HTTP statuses.

ERROR CATEGORIES:
  1. Lookup errors     - A referenced record does not exist
  2. Validation errors - Form-level rules (required fields, ranges, enums)
  3. State errors      - Illegal status transitions, duplicate keys
  4. Remote errors     - Generation functions unavailable or failing

USAGE:
  if errors.Is(err, generic.ErrNotFound) {
      // 404
  }

  var verr *generic.ValidationError
  if errors.As(err, &verr) {
      // verr.Fields holds field -> message
  }

SEE ALSO:
  - api/handlers.go: statusFor maps these to HTTP statuses
  - store/sqlite/sqlite.go: Translates driver errors into these sentinels
*/
package generic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when a record fails form-level validation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a write collides with an existing unique key.
	ErrConflict = errors.New("conflicting record")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrGeneratorUnavailable is returned when a generation function cannot
	// be reached or answers with a failure.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrUnsupportedFormat is returned for import files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError collects per-field validation messages.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Require adds a "required" message when value is blank.
func (e *ValidationError) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

// OneOf adds a message when value is set but not one of allowed.
func (e *ValidationError) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it holds errors, otherwise nil.
// Lets Validate methods end with `return verr.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Table string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Table, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransitionError provides details about a rejected status change.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnsupportedFormat)
}

// IsConflict returns true if the request collides with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
