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
	"fmt"
	"time"
)

// State is a step of a single Handle call.
type State int

const (
	StateIdle State = iota
	StateFiltering
	StateProbing
	StateExecuting
	StateReporting
	StateDone
	StateFailed
)

// String returns the lower-case state name used in logs, metrics and
// transport responses.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFiltering:
		return "filtering"
	case StateProbing:
		return "probing"
	case StateExecuting:
		return "executing"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown gate state %q", text)
}

// Reason explains why a Handle call ended where it did.
type Reason string

const (
	ReasonNotEdit           Reason = "not_edit"
	ReasonNoFilePath        Reason = "no_file_path"
	ReasonManagerMissing    Reason = "env_manager_missing"
	ReasonEnvironmentAbsent Reason = "environment_missing"
	ReasonLintPassed        Reason = "lint_passed"
	ReasonLintFailed        Reason = "lint_failed"
	ReasonLintTimeout       Reason = "lint_timeout"
	ReasonCanceled          Reason = "canceled"
)

// Outcome summarizes one Handle call.
type Outcome struct {
	InvocationID string        `json:"invocation_id"`
	State        State         `json:"state"`
	Reason       Reason        `json:"reason"`
	FilePath     string        `json:"file_path,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
}

// Linted reports whether the lint command actually ran.
func (o Outcome) Linted() bool {
	switch o.Reason {
	case ReasonLintPassed, ReasonLintFailed, ReasonLintTimeout:
		return true
	}
	return false
}
