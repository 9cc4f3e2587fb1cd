// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the runner package.
var (
	// ErrTimeout indicates the command did not finish before its deadline.
	ErrTimeout = errors.New("command timed out")

	// ErrInvalidInput indicates invalid arguments to a runner function.
	ErrInvalidInput = errors.New("invalid input")
)

// TimeoutError reports a command that lost the race against its timer.
//
// It matches ErrTimeout with errors.Is.
type TimeoutError struct {
	// Command is the command line that was abandoned.
	Command string

	// Timeout is the bound that was exceeded.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %dms", e.Timeout.Milliseconds())
}

// Unwrap returns ErrTimeout for errors.Is support.
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}
