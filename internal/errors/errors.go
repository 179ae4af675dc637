package errors

import (
	"fmt"
	"strings"
)

// ErrorType classifies pipeline errors for logging and run-summary reporting.
type ErrorType string

const (
	ErrTypeParsing ErrorType = "PARSING"
	ErrTypeStorage ErrorType = "STORAGE"
	ErrTypeSchema  ErrorType = "SCHEMA"
	ErrTypeSource  ErrorType = "SOURCE"
	ErrTypeOption  ErrorType = "OPTION"
	ErrTypeConfig  ErrorType = "CONFIG"
	ErrTypeSecret  ErrorType = "SECRET"
)

// AppError is the application error carried through the pipeline.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewSourceError marks a single extract file as unreadable. Fatal for the
// file, never for the batch.
func NewSourceError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSource, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// MissingColumnError reports a structural validation failure: a table lacks
// columns the caller declared required. Always fatal for the affected unit
// of work.
type MissingColumnError struct {
	Table     string
	Missing   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("[%s] table %q missing required column(s) %s (available: %s)",
		ErrTypeSchema, e.Table,
		strings.Join(e.Missing, ", "),
		strings.Join(e.Available, ", "))
}

// NewMissingColumnError creates a missing-column error.
func NewMissingColumnError(table string, missing, available []string) *MissingColumnError {
	return &MissingColumnError{Table: table, Missing: missing, Available: available}
}

// UnknownOptionError reports a filter option name that no filter spec
// declares. Caller error, fatal immediately.
type UnknownOptionError struct {
	Option string
	Known  []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("[%s] unknown filter option %q (known: %s)",
		ErrTypeOption, e.Option, strings.Join(e.Known, ", "))
}

// NewUnknownOptionError creates an unknown-option error.
func NewUnknownOptionError(option string, known []string) *UnknownOptionError {
	return &UnknownOptionError{Option: option, Known: known}
}
