package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jamesus88/turb-tax/internal/ledger"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Ledger refused the operation (unknown book or entry, interest precondition)
	ExitCommandError = 2 // Command error (bad input, config, database)
)

// Error codes used in CLI responses.
const (
	ErrCodeNotFound     = "E404"
	ErrCodePrecondition = "E412"
	ErrCodeValidation   = "E422"
	ErrCodeInternal     = "E500"
)

// ExitError carries the process exit code for a failed command. Reported
// is set once the message has already been written.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set once the error has been written to the user.
	Reported bool
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

// NewExitError returns an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// classify maps a ledger error onto a response code and an exit code.
func classify(err error) (code string, exit int) {
	switch {
	case ledger.IsNotFound(err):
		return ErrCodeNotFound, ExitFailure
	case ledger.IsPrecondition(err):
		return ErrCodePrecondition, ExitFailure
	case ledger.IsValidation(err):
		return ErrCodeValidation, ExitCommandError
	default:
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return ErrCodeInternal, exitErr.Code
		}
		return ErrCodeInternal, ExitCommandError
	}
}

// OutputFormatter handles text, JSON and markdown output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for prompts and diagnostics (defaults to Writer)
	Verbose   bool

	// TraceID is attached to every JSON response.
	TraceID string
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // per-invocation correlation id
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E404", "E412", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result. JSON output encodes data in the
// response envelope; text and markdown output call render instead.
func (f *OutputFormatter) Success(data any, render func(w io.Writer) error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: f.TraceID,
		})
	}
	if render == nil {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return render(f.Writer)
}

// Error outputs an error in the configured format. Text errors go to
// ErrWriter so that they never mix with command output.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			TraceID: f.TraceID,
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err to the user and returns an ExitError carrying the exit
// code for its kind.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)
	if werr := f.Error(code, err.Error(), nil); werr != nil {
		return WrapExitError(ExitCommandError, "write error output", werr)
	}
	return &ExitError{Code: exit, Message: "command failed", Err: err, Reported: true}
}

// VerboseLog writes a diagnostic line when --verbose is on. It prefers
// the error stream so JSON on stdout stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter is ErrWriter, or Writer when no error stream was given.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
