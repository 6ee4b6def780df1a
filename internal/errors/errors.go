package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError represents a structured pipeline error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeMissingFile     = "MISSING_FILE"
	CodeEmptyResult     = "EMPTY_RESULT"
	CodeSchemaDrift     = "SCHEMA_DRIFT"
	CodeMalformedFile   = "MALFORMED_FILE"
	CodeDuplicateColumn = "DUPLICATE_COLUMN"
	CodeMissingColumns  = "MISSING_COLUMNS"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

func MissingFile(path string) *AppError {
	return New(CodeMissingFile, fmt.Sprintf("file %s does not exist", path))
}

// EmptyResult reports that nothing could be loaded for a dataset kind
func EmptyResult(kind string, paths []string) *AppError {
	if len(paths) == 0 {
		return New(CodeEmptyResult, fmt.Sprintf("no data loaded for %s: no candidate files", kind))
	}
	return New(CodeEmptyResult, fmt.Sprintf("no data loaded for %s: none of [%s] contained rows", kind, strings.Join(paths, ", ")))
}

// SchemaDrift reports expected measure columns absent from a source
func SchemaDrift(kind string, columns []string) *AppError {
	return New(CodeSchemaDrift, fmt.Sprintf("%s: expected columns not found, filled with zero: %s", kind, strings.Join(columns, ", ")))
}

func MalformedFile(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeMalformedFile,
		Message: fmt.Sprintf("cannot parse %s as CSV", path),
		Cause:   cause,
	}
}

func DuplicateColumn(canonical string, raw []string) *AppError {
	return New(CodeDuplicateColumn, fmt.Sprintf("columns %s all normalize to %q", strings.Join(quoteAll(raw), ", "), canonical))
}

func MissingColumns(kind string, columns []string) *AppError {
	return New(CodeMissingColumns, fmt.Sprintf("%s: required columns missing: %s", kind, strings.Join(columns, ", ")))
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
