package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/teachsync/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (invalid document, duplicate email, unknown id, etc.)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, lock timeout, etc.)
)

// ErrCodeUsage marks errors raised by the CLI itself rather than the store.
const ErrCodeUsage = "USAGE"

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// exitCodeFor maps a store error code to a process exit code. Problems with
// the data are failures; problems reaching or decoding it are command errors.
func exitCodeFor(code model.Code) int {
	switch code {
	case model.CodeNotFound, model.CodeValidationFailed, model.CodeDuplicate,
		model.CodeReferentialIntegrity, model.CodeImportRowSkipped:
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // store error code, e.g. "DUPLICATE_CONSTRAINT"
	Op      string      `json:"op,omitempty"`      // failing operation
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Result outputs data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Result(data interface{}, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// Store errors keep their code, operation and violations; anything else is
// reported as an internal failure.
func (f *OutputFormatter) Fail(err error) error {
	var storeErr *model.Error
	if !errors.As(err, &storeErr) {
		_ = f.Error(string(model.CodeInternal), err.Error(), nil)
		return WrapExitError(ExitCommandError, string(model.CodeInternal), err)
	}

	message := storeErr.Message
	if storeErr.Err != nil {
		message = fmt.Sprintf("%s: %v", message, storeErr.Err)
	}

	if f.Format == "json" {
		cliErr := &CLIError{Code: string(storeErr.Code), Op: storeErr.Op, Message: message}
		if len(storeErr.Violations) > 0 {
			cliErr.Details = storeErr.Violations
		}
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: cliErr})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", storeErr.Code, message)
		for _, v := range storeErr.Violations {
			fmt.Fprintf(f.Writer, "  - %s\n", v.Message)
		}
	}
	return WrapExitError(exitCodeFor(storeErr.Code), string(storeErr.Code), err)
}

// Usage reports a CLI-level error such as a bad flag combination.
func (f *OutputFormatter) Usage(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	_ = f.Error(ErrCodeUsage, msg, nil)
	return NewExitError(ExitCommandError, ErrCodeUsage+": "+msg)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
