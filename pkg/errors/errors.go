// Package errors provides structured error types for crategen.
//
// Every failure the generator can report carries a machine-readable [Code]
// so callers (the CLI, tests, hooks) can tell a manifest problem from a
// tooling problem without string matching.
//
// # Error Codes
//
// Codes fall into a few families:
//   - MALFORMED_*: the manifest or a version requirement could not be read
//   - EPOCH_COLLISION, MISSING_*, NON_LOCAL_*, UNUSED_*: reconciliation findings
//   - SYNTHESIS_MISMATCH: an internal invariant broke after reconciliation passed
//   - EXTERNAL_TOOL_FAILURE, IO_FAILURE: cargo, gn or the filesystem failed
//
// # Diagnostics
//
// Reconciliation reports every problem in one run. Findings are collected in
// a [Diagnostics] value which is itself an error and unwraps to its members:
//
//	var diags errors.Diagnostics
//	diags.Add(errors.New(errors.ErrCodeUnusedVendoredUnit, "unused crate: %s", id))
//	if err := diags.Err(errors.ErrCodeReconciliation, "dependency resolution failed"); err != nil {
//	    return err
//	}
//
// [Is] searches the whole tree, so errors.Is(err, ErrCodeUnusedVendoredUnit)
// is true for the aggregate above.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput                Code = "INVALID_INPUT"
	ErrCodeMalformedManifest           Code = "MALFORMED_MANIFEST"
	ErrCodeMalformedVersionRequirement Code = "MALFORMED_VERSION_REQUIREMENT"

	// Reconciliation findings
	ErrCodeReconciliation          Code = "RECONCILIATION_FAILED"
	ErrCodeEpochCollision          Code = "EPOCH_COLLISION"
	ErrCodeMissingVendoredUnit     Code = "MISSING_VENDORED_UNIT"
	ErrCodeNonLocalResolution      Code = "NON_LOCAL_RESOLUTION"
	ErrCodeUnusedVendoredUnit      Code = "UNUSED_VENDORED_UNIT"
	ErrCodeUnvendoredStdDependency Code = "UNVENDORED_STD_DEPENDENCY"

	// Internal errors
	ErrCodeSynthesisMismatch Code = "SYNTHESIS_MISMATCH"
	ErrCodeInternal          Code = "INTERNAL_ERROR"

	// Environment errors
	ErrCodeExternalTool Code = "EXTERNAL_TOOL_FAILURE"
	ErrCodeIO           Code = "IO_FAILURE"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's tree has the given code.
// Both single and multi-error (Unwrap() []error) chains are searched.
func Is(err error, code Code) bool {
	found := false
	walk(err, func(e *Error) bool {
		if e.Code == code {
			found = true
			return false
		}
		return true
	})
	return found
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Severe reports whether err signals an internal logic defect rather than
// drift between the manifest, the vendored tree and the resolver.
func Severe(err error) bool {
	return Is(err, ErrCodeSynthesisMismatch) || Is(err, ErrCodeInternal)
}

// walk visits every *Error in err's tree depth-first until fn returns false.
func walk(err error, fn func(*Error) bool) bool {
	if err == nil {
		return true
	}
	if e, ok := err.(*Error); ok {
		if !fn(e) {
			return false
		}
	}
	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if !walk(inner, fn) {
				return false
			}
		}
	case interface{ Unwrap() error }:
		return walk(x.Unwrap(), fn)
	}
	return true
}

// Diagnostics is an ordered collection of findings reported together.
// The zero value is an empty, usable collection.
type Diagnostics []*Error

// Add appends findings, skipping nil entries.
func (d *Diagnostics) Add(errs ...*Error) {
	for _, e := range errs {
		if e != nil {
			*d = append(*d, e)
		}
	}
}

// Len returns the number of findings.
func (d Diagnostics) Len() int { return len(d) }

// Filter returns the findings carrying code, in report order.
func (d Diagnostics) Filter(code Code) Diagnostics {
	var out Diagnostics
	for _, e := range d {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}

// Lines returns one human-readable line per finding.
func (d Diagnostics) Lines() []string {
	lines := make([]string, 0, len(d))
	for _, e := range d {
		lines = append(lines, e.Message)
	}
	return lines
}

// Error implements the error interface with one finding per line.
func (d Diagnostics) Error() string {
	parts := make([]string, 0, len(d))
	for _, e := range d {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the findings to errors.Is/As.
func (d Diagnostics) Unwrap() []error {
	errs := make([]error, len(d))
	for i, e := range d {
		errs[i] = e
	}
	return errs
}

// Err returns nil when there are no findings, otherwise an *Error with the
// given code wrapping the whole collection.
func (d Diagnostics) Err(code Code, format string, args ...any) error {
	if len(d) == 0 {
		return nil
	}
	return Wrap(code, d, format, args...)
}

// DiagnosticsOf returns the findings aggregated inside err, if any.
func DiagnosticsOf(err error) (Diagnostics, bool) {
	var d Diagnostics
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
