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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/lintgate/pkg/logging"
	"github.com/AleutianAI/lintgate/pkg/ux"
	"github.com/AleutianAI/lintgate/services/gate"
	"github.com/AleutianAI/lintgate/services/gate/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// telemetryShutdownTimeout bounds the exporter flush on exit.
var telemetryShutdownTimeout = 5 * time.Second

// app holds the state shared by all subcommands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Persistent flags.
	configPath string
	logLevel   string
	logDir     string
	jsonLogs   bool
	dir        string

	cfg               gate.Config
	logger            *logging.Logger
	shutdownTelemetry func(context.Context) error
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, logger: logging.Discard()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Silent {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lintgate",
		Short: "Run project linters after an editing tool changes a file",
		Long: `lintgate is a post-edit quality gate. After a file edit it checks that the
project's environment manager and lint environment exist, runs the lint
command with a time bound, and reports failures with bounded output.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./"+gate.DefaultConfigFile+")")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.logDir, "log-dir", "", "also write JSON logs to this directory")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log JSON instead of text")
	flags.StringVar(&a.dir, "dir", "", "project directory the lint command runs in")

	root.AddCommand(
		a.hookCmd(),
		a.checkCmd(),
		a.probeCmd(),
		a.serveCmd(),
		a.watchCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration and starts logging and telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return newExitError(exitError, err)
	}

	cfg, err := gate.LoadConfig(a.resolveConfigPath())
	if err != nil {
		return newExitError(exitError, err)
	}
	if a.dir != "" {
		cfg.WorkDir = a.dir
	}
	a.cfg = cfg

	// A hook's stderr belongs to the host, so hook logs only go to files.
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  a.logDir,
		Service: "lintgate",
		JSON:    a.jsonLogs,
		Quiet:   cmd.Name() == "hook",
		Output:  a.stderr,
	})
	for _, w := range cfg.Telemetry.Warnings {
		a.logger.Warn("ignoring telemetry environment", "detail", w)
	}

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return newExitError(exitError, fmt.Errorf("init telemetry: %w", err))
	}
	a.shutdownTelemetry = shutdown
	return nil
}

// resolveConfigPath prefers --config, then the default file inside --dir.
func (a *app) resolveConfigPath() string {
	if a.configPath != "" || a.dir == "" {
		return a.configPath
	}
	candidate := filepath.Join(a.dir, gate.DefaultConfigFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func (a *app) close() {
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := a.shutdownTelemetry(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err.Error())
		}
	}
	_ = a.logger.Close()
}

func (a *app) newGate() (*gate.Gate, error) {
	g, err := gate.New(a.cfg, gate.WithLogger(a.logger))
	if err != nil {
		return nil, newExitError(exitError, err)
	}
	return g, nil
}

// report prints a gate failure and converts it to exit code 2.
func (a *app) report(err error) error {
	ux.NewPrinter(a.stderr).Failure(err.Error())
	return silentExit(exitLintFailed, err)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lintgate version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "lintgate %s\n", version)
		},
	}
}
