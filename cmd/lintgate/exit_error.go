// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import "fmt"

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitLintFailed = 2
)

// ExitError carries a process exit code out of a command.
//
// Silent errors have already been reported to the user; execute only uses
// their code.
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Silent suppresses the generic "Error:" line.
	Silent bool

	// Wrapped is the underlying error.
	Wrapped error
}

// Error returns a formatted error message.
func (e *ExitError) Error() string {
	if e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Wrapped
}

// newExitError creates an ExitError that execute reports before exiting.
func newExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Wrapped: err}
}

// silentExit creates an ExitError for a failure that was already printed.
func silentExit(code int, err error) *ExitError {
	return &ExitError{Code: code, Silent: true, Wrapped: err}
}
