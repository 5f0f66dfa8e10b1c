package cli

import (
	"errors"
	"fmt"

	"github.com/aidanlsb/mvtag/internal/library"
	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/multivalue"
	"github.com/aidanlsb/mvtag/internal/template"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	ErrConfigInvalid   = "CONFIG_INVALID"
	ErrDatabaseError   = "DATABASE_ERROR"
	ErrUndeclaredField = "UNDECLARED_FIELD"
	ErrInvalidInput    = "INVALID_INPUT"
	ErrQueryInvalid    = "QUERY_INVALID"
	ErrNoMatch         = "NO_MATCH"
	ErrFileNotFound    = "FILE_NOT_FOUND"
	ErrFileWriteError  = "FILE_WRITE_ERROR"
	ErrInternal        = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnTagWriteFailed       = "TAG_WRITE_FAILED"
	WarnTagReadFailed        = "TAG_READ_FAILED"
	WarnUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	WarnMoveFailed           = "MOVE_FAILED"
	WarnMoveSkipped          = "MOVE_SKIPPED"
	WarnAlreadyImported      = "ALREADY_IMPORTED"
	WarnConfirmationRequired = "CONFIRMATION_REQUIRED"
)

// errReported marks an error whose JSON envelope was already written.
var errReported = errors.New("error reported")

// NoMatchError is returned when a query selects no records.
type NoMatchError struct {
	Album bool
}

func (e *NoMatchError) Error() string {
	if e.Album {
		return "no matching albums found"
	}
	return "no matching items found"
}

// codedError attaches a stable code to an error.
type codedError struct {
	code       string
	suggestion string
	err        error
}

func (e *codedError) Error() string { return e.err.Error() }

func (e *codedError) Unwrap() error { return e.err }

func withCode(code string, err error, suggestion string) error {
	return &codedError{code: code, suggestion: suggestion, err: err}
}

func invalidInput(format string, args ...interface{}) error {
	return withCode(ErrInvalidInput, fmt.Errorf(format, args...), "")
}

// errorCode maps an error to its code and an optional suggestion.
func errorCode(err error) (string, string) {
	var (
		coded      *codedError
		undeclared *multivalue.UndeclaredFieldError
		conflict   *multivalue.ConflictingOperationError
		noMatch    *NoMatchError
		syntax     *template.SyntaxError
	)

	switch {
	case errors.As(err, &coded):
		return coded.code, coded.suggestion
	case errors.As(err, &undeclared):
		return ErrUndeclaredField, undeclared.Suggestion()
	case errors.As(err, &noMatch):
		return ErrNoMatch, "Run 'mvtag ls' with the same query to check what it selects"
	case errors.As(err, &conflict), errors.As(err, &syntax), errors.Is(err, model.ErrReadOnlyField):
		return ErrInvalidInput, ""
	case errors.Is(err, library.ErrNotFound):
		return ErrNoMatch, ""
	}
	return ErrInternal, ""
}
