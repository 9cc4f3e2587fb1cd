// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout applies when a caller passes a non-positive timeout.
const DefaultTimeout = 60 * time.Second

// DefaultShell interprets command strings given to RunWithTimeout.
const DefaultShell = "sh"

// Result is the structured outcome of one command execution.
type Result struct {
	// ExitCode is the process exit status. It is 1 when the command could not
	// be determined to have completed (launch failure, timeout, cancellation).
	ExitCode int `json:"exit_code"`

	// Stdout is the captured standard output, empty if nothing was captured.
	Stdout string `json:"stdout"`

	// Stderr is the captured standard error. For launch failures with no
	// captured output it carries the error message.
	Stderr string `json:"stderr"`
}

// OK returns true if the command exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner launches commands and bounds how long callers wait for them.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	shell         string
	dir           string
	killOnTimeout bool
}

// Option configures the Runner.
type Option func(*Runner)

// WithShell sets the shell used by RunWithTimeout. It is invoked as
// "<shell> -c <command>".
func WithShell(shell string) Option {
	return func(r *Runner) {
		if shell != "" {
			r.shell = shell
		}
	}
}

// WithDir sets the working directory for every command.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithKillOnTimeout makes the runner kill the command's process group when
// the timer or the context wins the race.
func WithKillOnTimeout(kill bool) Option {
	return func(r *Runner) {
		r.killOnTimeout = kill
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{shell: DefaultShell}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunWithTimeout runs command through the shell so pipes and redirection in
// the command string are honored.
//
// Description:
//
//	Races the command's completion against a timer of the given duration.
//	On completion the Result reflects the real exit status and streams and
//	the error is nil, including for non-zero exits and launch failures.
//	When the timer fires first the Result has ExitCode 1 and the error is a
//	*TimeoutError. When ctx is canceled first the error is ctx.Err().
//
// Inputs:
//
//	ctx - Context for cancellation. Must not be nil.
//	command - Shell command line.
//	timeout - Wall-clock bound. Non-positive values use DefaultTimeout.
//
// Outputs:
//
//	Result - Always populated with a defined exit code.
//	error - Non-nil only for timeout, cancellation or invalid input.
func (r *Runner) RunWithTimeout(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if strings.TrimSpace(command) == "" {
		err := fmt.Errorf("%w: command must not be empty", ErrInvalidInput)
		return Result{ExitCode: 1, Stderr: err.Error()}, err
	}
	return r.Exec(ctx, timeout, r.shell, "-c", command)
}

// Exec runs name with args directly (no shell) under the same timeout rules
// as RunWithTimeout.
func (r *Runner) Exec(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	if ctx == nil {
		err := fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
		return Result{ExitCode: 1, Stderr: err.Error()}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = r.dir
	if r.killOnTimeout {
		setProcessGroup(cmd)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return failedResult(err, "", ""), nil
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return completedResult(err, stdout.String(), stderr.String()), nil

	case <-timer.C:
		r.abandon(cmd)
		terr := &TimeoutError{Command: commandLine(name, args), Timeout: timeout}
		return Result{ExitCode: 1, Stderr: terr.Error()}, terr

	case <-ctx.Done():
		r.abandon(cmd)
		return Result{ExitCode: 1, Stderr: ctx.Err().Error()}, ctx.Err()
	}
}

// abandon is called when the command lost the race. The Wait goroutine owns
// the process from here on and the buffers are no longer read.
func (r *Runner) abandon(cmd *exec.Cmd) {
	if !r.killOnTimeout {
		return
	}
	_ = killProcessGroup(cmd)
}

// completedResult maps the outcome of cmd.Wait to a Result.
func completedResult(err error, stdout, stderr string) Result {
	if err == nil {
		return Result{Stdout: stdout, Stderr: stderr}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return Result{ExitCode: exitErr.ExitCode(), Stdout: stdout, Stderr: stderr}
	}
	return failedResult(err, stdout, stderr)
}

// failedResult encodes an execution error without a usable exit status.
func failedResult(err error, stdout, stderr string) Result {
	if stderr == "" {
		stderr = err.Error()
	}
	return Result{ExitCode: 1, Stdout: stdout, Stderr: stderr}
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
