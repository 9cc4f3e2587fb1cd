// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package format bounds linter output for display.
package format

import (
	"fmt"
	"strings"
)

// DefaultMaxLines is the display bound used when callers pass a non-positive limit.
const DefaultMaxLines = 50

// truncationNotice is appended after the kept lines. The leading newline puts
// a blank line between the diagnostics and the notice.
const truncationNotice = "\n[OUTPUT TRUNCATED: %d additional lines omitted. " +
	"Fix the issues above to see remaining diagnostics.]"

// Truncate keeps at most maxLines lines of output.
//
// Description:
//
//	Splits output on "\n". Output with maxLines lines or fewer is returned
//	unchanged. Longer output keeps its first maxLines lines followed by a
//	notice naming how many lines were omitted.
//
//	Applying Truncate to its own result may cut again, because the notice
//	adds lines of its own. Callers truncate once per display.
//
// Inputs:
//
//	output - Text to bound.
//	maxLines - Maximum lines kept. Non-positive values use DefaultMaxLines.
//
// Outputs:
//
//	string - The bounded text.
func Truncate(output string, maxLines int) string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	lines := strings.Split(output, "\n")
	if len(lines) <= maxLines {
		return output
	}

	omitted := len(lines) - maxLines
	kept := make([]string, 0, maxLines+1)
	kept = append(kept, lines[:maxLines]...)
	kept = append(kept, fmt.Sprintf(truncationNotice, omitted))
	return strings.Join(kept, "\n")
}

// CombineStreams joins stdout and stderr with a blank line and trims the
// surrounding whitespace. Linters write diagnostics to either stream.
func CombineStreams(stdout, stderr string) string {
	return strings.TrimSpace(stdout + "\n\n" + stderr)
}

// LineCount returns the number of "\n"-separated lines Truncate sees in output.
func LineCount(output string) int {
	return strings.Count(output, "\n") + 1
}
