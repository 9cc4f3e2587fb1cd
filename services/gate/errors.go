// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gate

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gate package.
var (
	// ErrLintFailed indicates the lint command exited with a non-zero status.
	ErrLintFailed = errors.New("linters failed")

	// ErrLintTimeout indicates the lint command did not finish in time.
	ErrLintTimeout = errors.New("linter execution timed out")

	// ErrInvalidConfig indicates a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidEvent indicates an edit event that could not be decoded.
	ErrInvalidEvent = errors.New("invalid edit event")
)

// LintError is returned by Handle when the gate ends in the failed state.
//
// Thread Safety: Immutable after creation.
type LintError struct {
	// FilePath is the edited file that triggered the lint run.
	FilePath string

	// Err is ErrLintFailed, ErrLintTimeout, or a context error.
	Err error

	// Output is the bounded lint output for ErrLintFailed, or the timeout
	// detail for ErrLintTimeout.
	Output string
}

// Error implements the error interface. The text is what the host shows to
// the editing agent.
func (e *LintError) Error() string {
	switch {
	case errors.Is(e.Err, ErrLintFailed):
		return fmt.Sprintf("Linters failed for %s:\n%s", e.FilePath, e.Output)
	case errors.Is(e.Err, ErrLintTimeout):
		return fmt.Sprintf("Linter execution timed out for %s: %s", e.FilePath, e.Output)
	default:
		return fmt.Sprintf("Linter execution aborted for %s: %v", e.FilePath, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LintError) Unwrap() error {
	return e.Err
}

// newLintError creates a LintError for filePath.
func newLintError(filePath string, err error) *LintError {
	return &LintError{FilePath: filePath, Err: err}
}

// WithOutput returns a copy of the error with the output field set.
func (e *LintError) WithOutput(output string) *LintError {
	return &LintError{
		FilePath: e.FilePath,
		Err:      e.Err,
		Output:   output,
	}
}
