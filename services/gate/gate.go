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
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/lintgate/pkg/logging"
	"github.com/AleutianAI/lintgate/services/gate/format"
	"github.com/AleutianAI/lintgate/services/gate/probe"
	"github.com/AleutianAI/lintgate/services/gate/runner"
	"github.com/AleutianAI/lintgate/services/gate/telemetry"
)

// Prober answers the two capability questions asked before linting.
//
// Implementations must not return errors or panic; any doubt is false.
type Prober interface {
	IsCommandAvailable(ctx context.Context, name string) bool
	IsNamedEnvironmentAvailable(ctx context.Context, environmentName string) bool
}

// Executor runs a shell command line with a wall-clock bound.
type Executor interface {
	RunWithTimeout(ctx context.Context, command string, timeout time.Duration) (runner.Result, error)
}

// Gate runs the lint command after edits when the project environment allows.
//
// Thread Safety: Safe for concurrent use. Handle shares no mutable state.
type Gate struct {
	cfg    Config
	prober Prober
	exec   Executor
	logger *logging.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithProber replaces the default command prober.
func WithProber(p Prober) Option {
	return func(g *Gate) {
		g.prober = p
	}
}

// WithExecutor replaces the default bounded executor.
func WithExecutor(e Executor) Option {
	return func(g *Gate) {
		g.exec = e
	}
}

// WithLogger sets the logger. Default: logging.Discard().
func WithLogger(logger *logging.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Gate.
//
// Description:
//
//	Validates cfg and wires the default runner and prober from it. Options
//	may replace either; an injected executor is not used for probes unless
//	a prober is injected as well.
//
// Outputs:
//
//	*Gate - Ready to handle events.
//	error - ErrInvalidConfig when cfg fails validation.
func New(cfg Config, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gate{
		cfg:    cfg,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}

	var r *runner.Runner
	if g.exec == nil || g.prober == nil {
		r = runner.New(
			runner.WithShell(cfg.Shell),
			runner.WithDir(cfg.WorkDir),
			runner.WithKillOnTimeout(cfg.KillOnTimeout),
		)
	}
	if g.exec == nil {
		g.exec = r
	}
	if g.prober == nil {
		g.prober = probe.New(r, cfg.EnvManager,
			probe.WithTimeout(cfg.ProbeTimeout),
			probe.WithLocateCommand(cfg.LocateCommand),
			probe.WithEnvListArgs(cfg.EnvListArgs...),
			probe.WithLogger(g.logger),
		)
	}
	return g, nil
}

// Handle runs one edit event through the gate.
//
// Description:
//
//	Filters the event, probes the environment, runs the lint command and
//	bounds its output on failure. Events that are not edits, carry no path,
//	or arrive when the environment is not ready finish silently in
//	StateDone. A nil ctx is treated as context.Background().
//
// Inputs:
//
//	ctx - Context for cancellation. Canceling during the lint run ends the
//	      call in StateFailed.
//	ev - The edit event.
//
// Outputs:
//
//	Outcome - Always populated with an invocation ID, final state and reason.
//	error - Non-nil only in StateFailed: a *LintError wrapping ErrLintFailed,
//	        ErrLintTimeout or the context error.
func (g *Gate) Handle(ctx context.Context, ev EditEvent) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	out := Outcome{InvocationID: uuid.NewString(), State: StateIdle}

	ctx, span := startHandleSpan(ctx, out.InvocationID, ev.ToolKind)
	defer span.End()
	logger := telemetry.LoggerWithTrace(ctx, g.logger.With("invocation_id", out.InvocationID))

	enter := func(s State) {
		out.State = s
		telemetry.AddSpanEvent(span, "state."+s.String())
		logger.Debug("gate state", "state", s.String(), "file", out.FilePath)
	}
	finish := func(s State, reason Reason, err error) (Outcome, error) {
		out.Reason = reason
		enter(s)
		out.Duration = time.Since(start)
		setHandleSpanResult(span, out)
		recordInvocation(ctx, out)
		if err != nil {
			telemetry.RecordError(span, err)
			logger.Warn("lint gate failed",
				"file", out.FilePath,
				"reason", string(reason),
				"duration_ms", out.Duration.Milliseconds(),
			)
			return out, err
		}
		telemetry.SetSpanOK(span)
		return out, nil
	}

	enter(StateFiltering)
	if !g.cfg.IsEditTool(ev.ToolKind) {
		return finish(StateDone, ReasonNotEdit, nil)
	}
	out.FilePath = ev.FilePath()
	if out.FilePath == "" {
		return finish(StateDone, ReasonNoFilePath, nil)
	}

	enter(StateProbing)
	if !g.probeManager(ctx) {
		logger.Debug("skipping lint, env manager not found", "env_manager", g.cfg.EnvManager)
		return finish(StateDone, ReasonManagerMissing, nil)
	}
	if !g.probeEnvironment(ctx) {
		logger.Debug("skipping lint, environment not found", "environment", g.cfg.Environment)
		return finish(StateDone, ReasonEnvironmentAbsent, nil)
	}

	enter(StateExecuting)
	lintStart := time.Now()
	res, err := g.exec.RunWithTimeout(ctx, g.cfg.LintCommand, g.cfg.LintTimeout)
	lintElapsed := time.Since(lintStart)
	span.SetAttributes(attribute.Int("gate.exit_code", res.ExitCode))

	switch {
	case errors.Is(err, runner.ErrTimeout):
		recordLint(ctx, lintElapsed, ReasonLintTimeout)
		lerr := newLintError(out.FilePath, ErrLintTimeout).WithOutput(err.Error())
		return finish(StateFailed, ReasonLintTimeout, lerr)

	case err != nil:
		recordLint(ctx, lintElapsed, ReasonCanceled)
		return finish(StateFailed, ReasonCanceled, newLintError(out.FilePath, err))

	case res.OK():
		recordLint(ctx, lintElapsed, ReasonLintPassed)
		return finish(StateDone, ReasonLintPassed, nil)
	}

	recordLint(ctx, lintElapsed, ReasonLintFailed)
	enter(StateReporting)
	combined := format.CombineStreams(res.Stdout, res.Stderr)
	lines := format.LineCount(combined)
	span.SetAttributes(
		attribute.Int("gate.output_lines", lines),
		attribute.Bool("gate.output_truncated", lines > g.cfg.MaxLines),
	)
	logger.Debug("lint output",
		"file", out.FilePath,
		"lines", lines,
		"max_lines", g.cfg.MaxLines,
	)
	bounded := format.Truncate(combined, g.cfg.MaxLines)
	lerr := newLintError(out.FilePath, ErrLintFailed).WithOutput(bounded)
	return finish(StateFailed, ReasonLintFailed, lerr)
}

// ProbeReport is the answer to both capability probes.
type ProbeReport struct {
	EnvManager           string `json:"env_manager"`
	ManagerAvailable     bool   `json:"manager_available"`
	Environment          string `json:"environment"`
	EnvironmentAvailable bool   `json:"environment_available"`
}

// Ready reports whether a lint run would be attempted.
func (r ProbeReport) Ready() bool {
	return r.ManagerAvailable && r.EnvironmentAvailable
}

// Probe runs both capability probes without linting. The environment probe
// is skipped when the manager is missing.
func (g *Gate) Probe(ctx context.Context) ProbeReport {
	if ctx == nil {
		ctx = context.Background()
	}
	report := ProbeReport{
		EnvManager:  g.cfg.EnvManager,
		Environment: g.cfg.Environment,
	}
	report.ManagerAvailable = g.probeManager(ctx)
	if report.ManagerAvailable {
		report.EnvironmentAvailable = g.probeEnvironment(ctx)
	}
	return report
}

func (g *Gate) probeManager(ctx context.Context) bool {
	ok := g.prober.IsCommandAvailable(ctx, g.cfg.EnvManager)
	recordProbe(ctx, "command", ok)
	return ok
}

func (g *Gate) probeEnvironment(ctx context.Context) bool {
	ok := g.prober.IsNamedEnvironmentAvailable(ctx, g.cfg.Environment)
	recordProbe(ctx, "environment", ok)
	return ok
}
