// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gate decides, after a file edit, whether to run the project's
// linters and turns a failing or hung lint run into an error for the caller.
//
// # Flow
//
// Each call to Gate.Handle walks one event through a fixed sequence:
//
//	Idle -> Filtering -> Probing -> Executing -> Reporting -> Done | Failed
//
// Filtering drops events that are not edits or carry no file path. Probing
// checks that the environment manager is installed and that the named
// environment exists; if either is missing the gate finishes silently.
// Executing runs the lint command with a wall-clock bound. A non-zero exit
// moves to Reporting, which bounds the combined output and fails with a
// *LintError.
//
// # Thread Safety
//
// A Gate holds only immutable configuration and may be shared between
// goroutines. Every Handle call is independent and runs at most one external
// command at a time.
package gate
