// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconPending} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("Render(%q) lost the glyph: %q", icon, icon.Render())
		}
	}
	if got := Icon("→").Render(); got != "→" {
		t.Errorf("unknown icon rendered as %q", got)
	}
}

// =============================================================================
// Printer Tests
// =============================================================================

func TestNewPrinter_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if NewPrinter(&buf).Styled() {
		t.Error("bytes.Buffer must not be treated as a terminal")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if NewPrinter(f).Styled() {
		t.Error("regular file must not be treated as a terminal")
	}
}

func TestFailure_PlainIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	msg := "Linters failed for a.py:\nE1: unused var"

	NewPlainPrinter(&buf).Failure(msg)

	if buf.String() != msg+"\n" {
		t.Errorf("Failure() = %q, want %q", buf.String(), msg+"\n")
	}
}

func TestFailure_Styled(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{w: &buf, styled: true}

	p.Failure("Linters failed for a.py:\nE1: unused var\nE2: line too long")

	out := buf.String()
	for _, want := range []string{"Linters failed for a.py", "E1: unused var", "E2: line too long", string(IconError)} {
		if !strings.Contains(out, want) {
			t.Errorf("styled failure missing %q:\n%s", want, out)
		}
	}
}

func TestFailure_StyledSingleLine(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{w: &buf, styled: true}

	p.Failure("Linter execution timed out for a.py: command timed out after 60000ms")

	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("single-line failure should print one line, got %q", buf.String())
	}
}

func TestPlainLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Success("lint passed")
	p.Warning("hatch not found")
	p.Status("env manager hatch", true, "")
	p.Status("environment develop", false, "not listed")

	want := "OK: lint passed\n" +
		"WARN: hatch not found\n" +
		"env manager hatch\tavailable\n" +
		"environment develop\tmissing\tnot listed\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestStyledStatus(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{w: &buf, styled: true}

	p.Status("env manager hatch", true, "")
	p.Status("environment develop", false, "not listed")

	out := buf.String()
	if !strings.Contains(out, string(IconSuccess)) || !strings.Contains(out, string(IconError)) {
		t.Errorf("styled status missing icons:\n%s", out)
	}
	if !strings.Contains(out, "not listed") {
		t.Errorf("styled status missing detail:\n%s", out)
	}
}
