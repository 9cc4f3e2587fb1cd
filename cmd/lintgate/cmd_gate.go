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

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintgate/pkg/ux"
	"github.com/AleutianAI/lintgate/services/gate"
)

func (a *app) hookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Handle one edit event read from stdin",
		Long: `Reads a JSON edit event such as

  {"tool_kind":"edit","output_metadata":{"edited_file_path":"src/app.py"}}

from stdin and runs the gate. Exits 2 with the failure on stderr when the
linters fail or time out, 1 when the event cannot be read, and 0 otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := gate.DecodeEvent(a.stdin)
			if err != nil {
				return newExitError(exitError, err)
			}
			g, err := a.newGate()
			if err != nil {
				return err
			}
			if _, err := g.Handle(cmd.Context(), ev); err != nil {
				return a.report(err)
			}
			return nil
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Run the gate as if FILE had just been edited",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.newGate()
			if err != nil {
				return err
			}
			out, err := g.Handle(cmd.Context(), gate.NewEditEvent(args[0]))
			if err != nil {
				return a.report(err)
			}

			p := ux.NewPrinter(a.stdout)
			if out.Linted() {
				p.Success(fmt.Sprintf("linters passed for %s", args[0]))
			} else {
				p.Warning(fmt.Sprintf("lint skipped for %s (%s)", args[0], out.Reason))
			}
			return nil
		},
	}
}

func (a *app) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Show whether the env manager and lint environment are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.newGate()
			if err != nil {
				return err
			}
			report := g.Probe(cmd.Context())

			p := ux.NewPrinter(a.stdout)
			p.Status("env manager "+report.EnvManager, report.ManagerAvailable, "")
			detail := ""
			if !report.ManagerAvailable {
				detail = "not checked"
			}
			p.Status("environment "+report.Environment, report.EnvironmentAvailable, detail)

			if !report.Ready() {
				return silentExit(exitError, fmt.Errorf("lint environment not ready"))
			}
			return nil
		},
	}
}

// watchRoot returns the directory to watch: the argument, then --dir, then ".".
func (a *app) watchRoot(args []string) (string, error) {
	root := "."
	switch {
	case len(args) > 0:
		root = args[0]
	case a.dir != "":
		root = a.dir
	}
	return filepath.Abs(root)
}
