package types

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. All of them are turned into user facing responses at the http boundary.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("you are not allowed here")
	ErrAuthFailed = errors.New("email or password does not exist")
	ErrValidation = errors.New("validation failed")
)

// ValidationError carries one message per offending input field. errors.Is(err, ErrValidation) holds for it.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add records a message for field and returns e, creating it if necessary.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e == nil {
		return NewValidationError(field, message)
	}
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
	return e
}

// Merge adds the fields of other that e does not have yet.
func (e *ValidationError) Merge(other *ValidationError) *ValidationError {
	if other == nil {
		return e
	}
	for k, v := range other.Fields {
		e = e.Add(k, v)
	}
	return e
}

// OrNil returns e as an error, or a nil error if e is nil. It avoids the typed nil trap when returning *ValidationError.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
