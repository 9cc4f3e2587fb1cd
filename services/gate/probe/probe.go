// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package probe answers whether the tools a lint run needs exist on this host.
//
// Probes are fail-open-to-false: any fault while probing (missing probe tool,
// non-zero exit, timeout, cancellation) is reported as "not available" and
// never as an error, so a host without the tooling silently skips linting.
package probe

import (
	"context"
	"strings"
	"time"

	"github.com/AleutianAI/lintgate/pkg/logging"
	"github.com/AleutianAI/lintgate/services/gate/runner"
)

// DefaultTimeout bounds a single probe command.
const DefaultTimeout = 10 * time.Second

// DefaultLocateCommand is the executable used to locate tools on PATH.
const DefaultLocateCommand = "which"

// DefaultEnvListArgs are passed to the environment manager to enumerate its
// named environments.
var DefaultEnvListArgs = []string{"env", "show"}

// Executor runs an argv-form command under a timeout.
//
// *runner.Runner satisfies this interface.
type Executor interface {
	Exec(ctx context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error)
}

// Prober runs availability probes.
//
// Thread Safety: Safe for concurrent use.
type Prober struct {
	exec          Executor
	envManager    string
	envListArgs   []string
	locateCommand string
	timeout       time.Duration
	logger        *logging.Logger
}

// Option configures the Prober.
type Option func(*Prober)

// WithTimeout sets the bound for each probe command.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLocateCommand replaces the "which" probe executable.
func WithLocateCommand(name string) Option {
	return func(p *Prober) {
		if name != "" {
			p.locateCommand = name
		}
	}
}

// WithEnvListArgs replaces the arguments used to enumerate environments.
func WithEnvListArgs(args ...string) Option {
	return func(p *Prober) {
		if len(args) > 0 {
			p.envListArgs = append([]string(nil), args...)
		}
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Prober that asks envManager about its environments.
func New(exec Executor, envManager string, opts ...Option) *Prober {
	p := &Prober{
		exec:          exec,
		envManager:    envManager,
		envListArgs:   DefaultEnvListArgs,
		locateCommand: DefaultLocateCommand,
		timeout:       DefaultTimeout,
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsCommandAvailable reports whether name can be located on PATH.
//
// Returns true iff the locate probe exits with status zero.
func (p *Prober) IsCommandAvailable(ctx context.Context, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	res, ok := p.run(ctx, p.locateCommand, name)
	available := ok && res.OK()

	p.logger.Debug("command probe",
		"command", name,
		"available", available,
		"exit_code", res.ExitCode,
	)
	return available
}

// IsNamedEnvironmentAvailable reports whether the environment manager lists
// environmentName.
//
// Returns true iff the listing exits with status zero and its raw stdout
// contains environmentName as a substring.
func (p *Prober) IsNamedEnvironmentAvailable(ctx context.Context, environmentName string) bool {
	if strings.TrimSpace(environmentName) == "" || p.envManager == "" {
		return false
	}
	res, ok := p.run(ctx, p.envManager, p.envListArgs...)
	available := ok && res.OK() && strings.Contains(res.Stdout, environmentName)

	p.logger.Debug("environment probe",
		"env_manager", p.envManager,
		"environment", environmentName,
		"available", available,
		"exit_code", res.ExitCode,
	)
	return available
}

// run executes one probe. ok is false when the probe could not produce a
// trustworthy result (timeout, cancellation, panic in the executor).
func (p *Prober) run(ctx context.Context, name string, args ...string) (res runner.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("probe panicked", "probe", name, "panic", r)
			res, ok = runner.Result{ExitCode: 1}, false
		}
	}()
	if p.exec == nil || ctx == nil {
		return runner.Result{ExitCode: 1}, false
	}

	res, err := p.exec.Exec(ctx, p.timeout, name, args...)
	if err != nil {
		p.logger.Debug("probe did not complete", "probe", name, "error", err.Error())
		return res, false
	}
	return res, true
}
