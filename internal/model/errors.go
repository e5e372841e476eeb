package model

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes store and sync failures.
type Code string

const (
	// CodeNotFound indicates a missing document, instructor, module or software.
	CodeNotFound Code = "NOT_FOUND"

	// CodeEmptyDocument indicates the document exists but has no content.
	CodeEmptyDocument Code = "EMPTY_DOCUMENT"

	// CodeMalformedDocument indicates the document failed to parse.
	CodeMalformedDocument Code = "MALFORMED_DOCUMENT"

	// CodeValidationFailed carries the full list of structural violations.
	CodeValidationFailed Code = "VALIDATION_FAILED"

	// CodeDuplicate indicates an id, email, code or software-name collision.
	CodeDuplicate Code = "DUPLICATE_CONSTRAINT"

	// CodeReferentialIntegrity indicates a dangling module or instructor reference.
	CodeReferentialIntegrity Code = "REFERENTIAL_INTEGRITY"

	// CodePersistence indicates an I/O failure (locked file, full disk, ...).
	CodePersistence Code = "PERSISTENCE_FAILURE"

	// CodeImportRowSkipped marks a non-fatal per-row import problem.
	CodeImportRowSkipped Code = "IMPORT_ROW_SKIPPED"

	// CodeInternal wraps any unexpected failure caught at an operation boundary.
	CodeInternal Code = "INTERNAL"
)

// Sentinels for errors.Is; they match any *Error with the same Code.
var (
	ErrNotFound             = &Error{Code: CodeNotFound}
	ErrEmptyDocument        = &Error{Code: CodeEmptyDocument}
	ErrMalformedDocument    = &Error{Code: CodeMalformedDocument}
	ErrValidationFailed     = &Error{Code: CodeValidationFailed}
	ErrDuplicate            = &Error{Code: CodeDuplicate}
	ErrReferentialIntegrity = &Error{Code: CodeReferentialIntegrity}
	ErrPersistence          = &Error{Code: CodePersistence}
	ErrInternal             = &Error{Code: CodeInternal}
)

// Error is the structured failure returned by every store operation.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the failing operation (e.g. "add_instructor").
	Op string

	// Message is a human-readable description.
	Message string

	// Violations is set for CodeValidationFailed.
	Violations []Violation

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Violations) > 0 {
		fmt.Fprintf(&b, " (%d violations)", len(e.Violations))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Errorf creates an Error with a formatted message.
func Errorf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with a cause.
func Wrap(code Code, op string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, CodeInternal
// for any other non-nil error, and "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ViolationsOf returns the violations carried by err, if any.
func ViolationsOf(err error) []Violation {
	var e *Error
	if errors.As(err, &e) {
		return e.Violations
	}
	return nil
}

// Violation is a single structural problem found by validation.
type Violation struct {
	// Path locates the problem, e.g. "modules.mod_cs101.software[0]".
	Path    string `json:"path"`
	Message string `json:"message"`
}

// String returns the message.
func (v Violation) String() string {
	return v.Message
}
