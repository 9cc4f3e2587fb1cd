// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import "github.com/AleutianAI/lintgate/services/gate"

// HookResponse is returned by POST /v1/hooks/after-edit.
type HookResponse struct {
	// InvocationID identifies the gate run in logs and traces.
	InvocationID string `json:"invocation_id"`

	// State is "done" or "failed".
	State gate.State `json:"state"`

	// Reason explains the final state.
	Reason gate.Reason `json:"reason,omitempty"`

	// Error is the failure message for the editing agent. Set only when
	// State is "failed".
	Error string `json:"error,omitempty"`
}

// ErrorResponse is returned for requests the gate never saw.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
