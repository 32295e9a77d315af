// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the niemgraph CLI
// and its library surface.
//
// It defines UserError, a type that carries structured error information —
// what went wrong, why, and how to fix it — plus a taxonomy of exit codes
// matching the ingestion pipeline's error kinds (§7). Per-file failures
// inside a BatchResult are plain Go errors; UserError/FatalError is
// reserved for synchronous top-level rejections (bad config, BatchTooLarge
// on submission, a missing tool binary discovered at startup).
//
// # Usage Example
//
//	err := errors.NewBatchTooLargeError(
//	    "Too many files in one ingest request",
//	    "23 files submitted, limit is 20 for ingest",
//	    "Split the request into batches of 20 or fewer files",
//	)
//	if err != nil {
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Error: Too many files in one ingest request
//	// Cause: 23 files submitted, limit is 20 for ingest
//	// Fix:   Split the request into batches of 20 or fewer files
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories (§7 error taxonomy).
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitInput indicates the caller exceeded a batch-size limit or
	// otherwise supplied invalid input (BatchTooLarge).
	ExitInput = 4

	// ExitValidation indicates a schema or instance document failed
	// validator rules (ValidationFailure, SchemaIncomplete).
	ExitValidation = 20

	// ExitMapping indicates the canonical model could not be compiled
	// into a GraphMapping (MappingCompilationError).
	ExitMapping = 21

	// ExitProjection indicates an instance document violated a
	// projection invariant (ProjectionError, e.g. UnknownElement).
	ExitProjection = 22

	// ExitTool indicates the external canonicalizer/validator subprocess
	// failed, was unavailable, or timed out.
	ExitTool = 23

	// ExitSink indicates the graph or blob sink rejected a write
	// (SinkError).
	ExitSink = 24

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong (user-facing error description)
//   - Cause: why it happened (diagnostic information)
//   - Fix: how to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	Message string
	Cause   string
	Fix     string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Kind is the §7 error-taxonomy kind, e.g. "ToolTimeout" or "SinkError".
	Kind string

	// Err is the underlying error that caused this error (optional).
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewBatchTooLargeError creates a BatchTooLarge error (§7). The whole
// request is rejected synchronously; no file in the batch is attempted.
func NewBatchTooLargeError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInput, Kind: "BatchTooLarge"}
}

// NewValidationError creates a ValidationFailure error (§7). Cause should
// summarize the structured ValidationReport; callers that need the full
// report should attach it via the per-file BatchResult entry instead of
// relying on this error's Cause string.
func NewValidationError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitValidation, Kind: "ValidationFailure", Err: err}
}

// NewSchemaIncompleteError creates a SchemaIncomplete error (§7): declared
// imports could not be resolved from the submitted bundle.
func NewSchemaIncompleteError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitValidation, Kind: "SchemaIncomplete"}
}

// NewMappingError creates a MappingCompilationError (§7): the canonical
// model could not be compiled into a GraphMapping. Fatal for the bundle.
func NewMappingError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitMapping, Kind: "MappingCompilationError", Err: err}
}

// NewProjectionError creates a ProjectionError (§7): an instance violated
// a projection invariant. Fails the single file; the batch continues.
func NewProjectionError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitProjection, Kind: "ProjectionError", Err: err}
}

// ToolErrorKind distinguishes the three subprocess failure modes the
// ToolGateway can surface, all grouped under ExitTool (§4.2, §7).
type ToolErrorKind string

const (
	ToolUnavailable    ToolErrorKind = "ToolUnavailable"
	ToolExecutionError ToolErrorKind = "ToolExecutionError"
	ToolTimeout        ToolErrorKind = "ToolTimeout"
)

// NewToolError creates a tool-gateway error of the given kind. None of
// the three kinds is retried by the core.
func NewToolError(kind ToolErrorKind, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitTool, Kind: string(kind), Err: err}
}

// NewSinkError creates a SinkError (§7): the graph or blob sink rejected
// a write. Per-file transaction is aborted; the batch continues.
func NewSinkError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitSink, Kind: "SinkError", Err: err}
}

// NewInternalError creates an internal error with exit code ExitInternal.
// Use for unexpected errors that indicate bugs: assertion failures,
// unexpected nil values, unhandled cases.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInternal, Kind: "Internal", Err: err}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display. Color
// output respects the NO_COLOR environment variable and can be explicitly
// disabled with the noColor parameter. Empty Cause or Fix are omitted.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Kind     string `json:"kind,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		Kind:     e.Kind,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code. For a
// non-nil err it never returns; a nil err is a no-op.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
