// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runner executes external commands with a hard wall-clock bound.
//
// Every call returns a Result with a defined exit code. Launch failures are
// encoded in the Result instead of being returned as errors; only a timeout or
// a canceled context produces a non-nil error, so callers can tell "timed out"
// apart from "ran and failed".
//
// # Timeouts
//
// The process is raced against a timer. When the timer wins the caller stops
// waiting immediately. The process itself keeps running unless the Runner was
// built with WithKillOnTimeout, in which case its whole process group is killed.
//
// # Thread Safety
//
// A Runner holds only immutable settings and is safe for concurrent use.
package runner
