package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeDataFormat       ErrorType = "DATA_FORMAT"
	ErrTypeMissingSeries    ErrorType = "MISSING_SERIES"
	ErrTypeConfig           ErrorType = "CONFIG"
	ErrTypeRange            ErrorType = "RANGE"
	ErrTypeInvalidBaseValue ErrorType = "INVALID_BASE_VALUE"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeUnknown          ErrorType = "UNKNOWN"
)

// Typed is implemented by every error of the analysis taxonomy.
type Typed interface {
	error
	Type() ErrorType
}

// DataFormatError reports input whose shape cannot be analysed at all,
// e.g. a table without a single parseable quarter header.
type DataFormatError struct {
	Source  string
	Message string
}

func (e *DataFormatError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("data format: %s: %s", e.Source, e.Message)
	}
	return "data format: " + e.Message
}

// Type implements Typed
func (e *DataFormatError) Type() ErrorType { return ErrTypeDataFormat }

// RequiredSeriesMissingError reports a mandatory row that no candidate phrase matched.
type RequiredSeriesMissingError struct {
	Series     string
	Candidates []string
}

func (e *RequiredSeriesMissingError) Error() string {
	return fmt.Sprintf("required series %q not found (tried %s)", e.Series, quoteAll(e.Candidates))
}

// Type implements Typed
func (e *RequiredSeriesMissingError) Type() ErrorType { return ErrTypeMissingSeries }

// ConfigurationError reports a configuration value that cannot be used.
type ConfigurationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// Type implements Typed
func (e *ConfigurationError) Type() ErrorType { return ErrTypeConfig }

// RangeError reports a value that parses but lies outside the observed data range.
type RangeError struct {
	Field string
	Value string
	First string
	Last  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %q is outside the available range %s .. %s", e.Field, e.Value, e.First, e.Last)
}

// Type implements Typed
func (e *RangeError) Type() ErrorType { return ErrTypeRange }

// InvalidBaseValueError reports a deflator that cannot be rebased at the chosen base period.
type InvalidBaseValueError struct {
	Index int
	Label string
	Value float64
}

func (e *InvalidBaseValueError) Error() string {
	where := fmt.Sprintf("index %d", e.Index)
	if e.Label != "" {
		where = e.Label
	}
	return fmt.Sprintf("deflator at base %s is %v; rebasing requires a finite non-zero value", where, e.Value)
}

// Type implements Typed
func (e *InvalidBaseValueError) Type() ErrorType { return ErrTypeInvalidBaseValue }

// AppError represents an application error that is not part of the analysis taxonomy
type AppError struct {
	Kind    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Type implements Typed
func (e *AppError) Type() ErrorType { return e.Kind }

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(kind ErrorType, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// TypeOf returns the taxonomy type of the first Typed error in err's chain.
func TypeOf(err error) ErrorType {
	var typed Typed
	if errors.As(err, &typed) {
		return typed.Type()
	}
	return ErrTypeUnknown
}

// Is reports whether err carries the given taxonomy type.
func Is(err error, kind ErrorType) bool {
	return err != nil && TypeOf(err) == kind
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
