// Package apperror defines the error types returned by the appender, its
// configuration layer and the archive importer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is reported when a write is dropped because the delivery queue is full.
	ErrQueueFull = errors.New("appender queue full")

	// ErrClosed is returned when appending to an appender that has been closed.
	ErrClosed = errors.New("appender closed")
)

// ConfigurationError represents a missing or invalid appender setting.
type ConfigurationError struct {
	Setting string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration for %s: %s: %v", e.Setting, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Setting, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FieldError represents a field whose layout failed to render a value.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s': %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// WriteError represents a failed insert against the store.
type WriteError struct {
	Operation  string
	Collection string
	Documents  int
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s of %d document(s) into %s failed: %v",
		e.Operation, e.Documents, e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ParseError represents an error while reading an archived log record
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input file that does not match the
// format its parser expects.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}
