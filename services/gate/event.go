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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ToolKindEdit is the tool kind hosts report for a file edit.
const ToolKindEdit = "edit"

// EditEvent is the notification a host sends after one of its tools ran.
type EditEvent struct {
	// ToolKind names the tool that ran, e.g. "edit" or "read".
	ToolKind string `json:"tool_kind"`

	// Metadata carries tool output details. Nil when the tool reported none.
	Metadata *OutputMetadata `json:"output_metadata,omitempty"`
}

// OutputMetadata is the part of a tool's output the gate cares about.
type OutputMetadata struct {
	EditedFilePath string `json:"edited_file_path,omitempty"`
}

// NewEditEvent builds the event a host would send after editing path.
func NewEditEvent(path string) EditEvent {
	return EditEvent{
		ToolKind: ToolKindEdit,
		Metadata: &OutputMetadata{EditedFilePath: path},
	}
}

// FilePath returns the edited file path, or "" when the event has none.
func (e EditEvent) FilePath() string {
	if e.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(e.Metadata.EditedFilePath)
}

// DecodeEvent reads a single JSON edit event from r.
func DecodeEvent(r io.Reader) (EditEvent, error) {
	var ev EditEvent
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ev); err != nil {
		return EditEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, nil
}
