package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pushdown/internal/engine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failures, compile or execution errors
	ExitCommandError = 2 // Command error (invalid paths, unreadable inputs, etc.)
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric  = "E001"
	ErrCodePipeline = "E002" // pipeline file unreadable or invalid
	ErrCodeSchema   = "E003" // schema failed to load or compile
	ErrCodeGraph    = "E004" // graph fixture invalid or rejected by the schema
	ErrCodeNotFound = "E005"
	ErrCodeStore    = "E006" // database could not be opened or written
	ErrCodeCompile  = "E007" // pipeline could not be pushed down
	ErrCodeExecute  = "E008"
)

// ExitError represents an error with a specific exit code and CLI error
// code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // CLI error code, E001 when empty
	Message string
	Err     error
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
func NewExitError(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, errCode, message string, err error) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses. QueryCode carries
// the compile or execution code of the underlying failure, e.g.
// UNSUPPORTED_PREDICATE or TRAVERSERS_EXCEEDED.
type CLIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	QueryCode string `json:"query_code,omitempty"`
}

// textRenderer is implemented by payloads with a human-readable form.
type textRenderer interface {
	renderText(w io.Writer)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}

	if r, ok := data.(textRenderer); ok {
		r.renderText(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Fail reports err in the configured format and returns it as an
// ExitError, so commands can `return f.Fail(err)`.
func (f *OutputFormatter) Fail(err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitFailure, ErrCodeGeneric, "command failed", err)
	}
	code := exitErr.ErrCode
	if code == "" {
		code = ErrCodeGeneric
	}
	queryCode := engine.ErrorCode(err)

	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		_ = enc.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: exitErr.Error(), QueryCode: queryCode},
		})
		return exitErr
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	if queryCode != "" {
		fmt.Fprintf(w, "Error [%s/%s]: %s\n", code, queryCode, exitErr.Error())
	} else {
		fmt.Fprintf(w, "Error [%s]: %s\n", code, exitErr.Error())
	}
	return exitErr
}
