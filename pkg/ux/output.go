// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders lintgate results for people at a terminal.
//
// Output is styled with lipgloss only when the destination is a terminal.
// Anything else (a host reading a hook's stderr, a log file, a pipe) gets the
// plain text unchanged, so machine consumers see exactly the gate's message.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette
var (
	ColorSlate = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// Printer writes results to one destination.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter returns a Printer for w, styled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// NewPlainPrinter returns a Printer that never styles its output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Styled reports whether the printer emits terminal styling.
func (p *Printer) Styled() bool {
	return p.styled
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Failure prints a gate failure. Plain output is the message followed by a
// newline. Styled output splits off the first line as a title and boxes
// the rest.
func (p *Printer) Failure(message string) {
	if !p.styled {
		fmt.Fprintln(p.w, message)
		return
	}
	title, body, _ := strings.Cut(message, "\n")
	title = strings.TrimSuffix(title, ":")
	header := IconError.Render() + " " + Styles.Error.Bold(true).Render(title)
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(p.w, header)
		return
	}
	fmt.Fprintln(p.w, header)
	fmt.Fprintln(p.w, Styles.ErrorBox.Render(body))
}

// Success prints a success line with a checkmark.
func (p *Printer) Success(text string) {
	if !p.styled {
		fmt.Fprintf(p.w, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	if !p.styled {
		fmt.Fprintf(p.w, "WARN: %s\n", text)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
}

// Status prints one labeled availability check.
func (p *Printer) Status(label string, ok bool, detail string) {
	if !p.styled {
		state := "missing"
		if ok {
			state = "available"
		}
		if detail != "" {
			fmt.Fprintf(p.w, "%s\t%s\t%s\n", label, state, detail)
		} else {
			fmt.Fprintf(p.w, "%s\t%s\n", label, state)
		}
		return
	}
	icon := IconError
	if ok {
		icon = IconSuccess
	}
	if detail != "" {
		fmt.Fprintf(p.w, "%s %s %s\n", icon.Render(), Styles.Bold.Render(label), Styles.Muted.Render("("+detail+")"))
	} else {
		fmt.Fprintf(p.w, "%s %s\n", icon.Render(), Styles.Bold.Render(label))
	}
}
