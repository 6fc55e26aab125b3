package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryInput    ErrorCategory = "input"
	CategoryFile     ErrorCategory = "file"
	CategoryParse    ErrorCategory = "parse"
	CategoryCoercion ErrorCategory = "coercion"
	CategorySchema   ErrorCategory = "schema"
	CategoryExport   ErrorCategory = "export"
	CategoryConfig   ErrorCategory = "configuration"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Input errors
	CodeMissingInput ErrorCode = "missing_input"

	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileRead       ErrorCode = "file_read"

	// Parse errors
	CodeNoGrammarMatched ErrorCode = "no_grammar_matched"
	CodeExtractionFailed ErrorCode = "extraction_failed"

	// Coercion errors
	CodeCoercionFailed ErrorCode = "coercion_failed"

	// Schema errors
	CodeSchemaMismatch ErrorCode = "schema_mismatch"
	CodeStatusWrite    ErrorCode = "status_write"

	// Export errors
	CodeExportFailed ErrorCode = "export_failed"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// NormalizeError is the base error type for all application errors.
// Line-level parse failures are recovered as diagnostics and never surface
// through this type; only batch-fatal conditions do.
type NormalizeError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *NormalizeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *NormalizeError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *NormalizeError) GetExitCode() int {
	switch e.Category {
	case CategoryInput, CategoryFile:
		return 2
	case CategoryParse, CategoryCoercion:
		return 3
	case CategoryConfig:
		return 4
	case CategorySchema:
		return 5
	case CategoryExport, CategoryInternal:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *NormalizeError) WithContext(key string, value interface{}) *NormalizeError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *NormalizeError) WithSuggestion(suggestion string) *NormalizeError {
	e.Suggestion = suggestion
	return e
}

// New creates a new NormalizeError
func New(category ErrorCategory, code ErrorCode, message string) *NormalizeError {
	return &NormalizeError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with NormalizeError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *NormalizeError {
	if err == nil {
		return nil
	}

	return &NormalizeError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// InputError creates the fatal error for a call with no input source.
// This is the only condition under which an entry point produces no dataset.
func InputError() *NormalizeError {
	return New(CategoryInput, CodeMissingInput,
		"either a file path or raw text must be provided").
		WithSuggestion("pass a log file path or an in-memory text blob")
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *NormalizeError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("log file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied reading log file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("failed to read log file: %s", path)
		suggestion = "verify the file is a readable UTF-8 text file"
	}

	var result *NormalizeError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseFailure creates the recoverable error for one dropped line. The batch
// aggregator converts it into a diagnostic entry; it is never batch-fatal.
func ParseFailure(code ErrorCode, ordinal int, text string, err error) *NormalizeError {
	var message string
	switch code {
	case CodeNoGrammarMatched:
		message = fmt.Sprintf("no grammar matched line %d", ordinal)
	case CodeExtractionFailed:
		message = fmt.Sprintf("field extraction failed for line %d", ordinal)
	default:
		message = fmt.Sprintf("parse failure at line %d", ordinal)
	}

	var result *NormalizeError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithContext("ordinal", ordinal).
		WithContext("text", text)
}

// CoercionError creates the recoverable error for a value that failed a
// column-wide type coercion; the offending value is nulled, not the batch.
func CoercionError(field string, value interface{}, err error) *NormalizeError {
	result := Wrap(err, CategoryCoercion, CodeCoercionFailed,
		fmt.Sprintf("failed to coerce field '%s': %v", field, value))
	if err == nil {
		result = New(CategoryCoercion, CodeCoercionFailed,
			fmt.Sprintf("failed to coerce field '%s': %v", field, value))
	}
	return result.
		WithContext("field", field).
		WithContext("value", value)
}

// SchemaError creates a schema validation error
func SchemaError(code ErrorCode, detail string, err error) *NormalizeError {
	var message string
	var suggestion string

	switch code {
	case CodeSchemaMismatch:
		message = fmt.Sprintf("dataset does not match declared schema: %s", detail)
		suggestion = "compare the declared schema with the produced columns and dtypes"
	case CodeStatusWrite:
		message = fmt.Sprintf("failed to write validation status: %s", detail)
		suggestion = "ensure the status file directory exists and is writable"
	default:
		message = fmt.Sprintf("schema validation error: %s", detail)
		suggestion = "check the declared schema definition"
	}

	var result *NormalizeError
	if err != nil {
		result = Wrap(err, CategorySchema, code, message)
	} else {
		result = New(CategorySchema, code, message)
	}

	return result.WithSuggestion(suggestion).WithContext("detail", detail)
}

// ExportError creates an artifact persistence error
func ExportError(path string, err error) *NormalizeError {
	return Wrap(err, CategoryExport, CodeExportFailed,
		fmt.Sprintf("failed to write dataset artifact: %s", path)).
		WithSuggestion("ensure the output directory exists and is writable").
		WithContext("output_path", path)
}

// ConfigError creates a configuration-related error
func ConfigError(setting string, value interface{}, err error) *NormalizeError {
	result := Wrap(err, CategoryConfig, CodeInvalidConfig,
		fmt.Sprintf("invalid configuration for '%s': %v", setting, value))
	if err == nil {
		result = New(CategoryConfig, CodeInvalidConfig,
			fmt.Sprintf("invalid configuration for '%s': %v", setting, value))
	}
	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *NormalizeError {
	result := Wrap(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected error during %s", operation))
	if err == nil {
		result = New(CategoryInternal, CodeUnexpectedError,
			fmt.Sprintf("unexpected error during %s", operation))
	}
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*NormalizeError     `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*NormalizeError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if errs == nil {
		summary.Errors = []*NormalizeError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// Utility functions

// IsNormalizeError checks if an error is a NormalizeError
func IsNormalizeError(err error) bool {
	_, ok := err.(*NormalizeError)
	return ok
}

// AsNormalizeError extracts a NormalizeError from an error chain
func AsNormalizeError(err error) (*NormalizeError, bool) {
	var normErr *NormalizeError
	if errors.As(err, &normErr) {
		return normErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a NormalizeError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *NormalizeError {
	if err == nil {
		return nil
	}

	if normErr, ok := AsNormalizeError(err); ok {
		return normErr
	}

	return Wrap(err, category, code, message)
}
