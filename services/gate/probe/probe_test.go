// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/lintgate/services/gate/runner"
)

type execCall struct {
	name string
	args []string
}

type fakeExecutor struct {
	mu     sync.Mutex
	calls  []execCall
	result runner.Result
	err    error
	panics bool
}

func (f *fakeExecutor) Exec(_ context.Context, _ time.Duration, name string, args ...string) (runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, execCall{name: name, args: args})
	f.mu.Unlock()
	if f.panics {
		panic("executor exploded")
	}
	return f.result, f.err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestIsCommandAvailable_UsesLocateProbe(t *testing.T) {
	fx := &fakeExecutor{result: runner.Result{ExitCode: 0, Stdout: "/usr/bin/hatch\n"}}
	p := New(fx, "hatch")

	assert.True(t, p.IsCommandAvailable(context.Background(), "hatch"))
	require.Len(t, fx.calls, 1)
	assert.Equal(t, "which", fx.calls[0].name)
	assert.Equal(t, []string{"hatch"}, fx.calls[0].args)
}

func TestIsCommandAvailable_FalseCases(t *testing.T) {
	tests := []struct {
		name string
		fx   *fakeExecutor
	}{
		{"non-zero exit", &fakeExecutor{result: runner.Result{ExitCode: 1}}},
		{"probe tool missing", &fakeExecutor{result: runner.Result{ExitCode: 1, Stderr: "exec: \"which\": not found"}}},
		{"timeout", &fakeExecutor{result: runner.Result{ExitCode: 1}, err: &runner.TimeoutError{Timeout: time.Second}}},
		{"executor error with zero exit", &fakeExecutor{result: runner.Result{ExitCode: 0}, err: errors.New("boom")}},
		{"executor panics", &fakeExecutor{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.fx, "hatch")
			assert.NotPanics(t, func() {
				assert.False(t, p.IsCommandAvailable(context.Background(), "hatch"))
			})
		})
	}
}

func TestIsCommandAvailable_EmptyName(t *testing.T) {
	fx := &fakeExecutor{}
	p := New(fx, "hatch")

	assert.False(t, p.IsCommandAvailable(context.Background(), " "))
	assert.Empty(t, fx.calls)
}

func TestIsCommandAvailable_NilExecutor(t *testing.T) {
	p := New(nil, "hatch")
	assert.False(t, p.IsCommandAvailable(context.Background(), "hatch"))
}

func TestIsNamedEnvironmentAvailable(t *testing.T) {
	tests := []struct {
		name   string
		result runner.Result
		err    error
		want   bool
	}{
		{"listed", runner.Result{Stdout: "default\ndevelop\n"}, nil, true},
		{"listed inside a table", runner.Result{Stdout: "│ develop │ virtual │\n"}, nil, true},
		{"not listed", runner.Result{Stdout: "default\n"}, nil, false},
		{"listed but non-zero exit", runner.Result{ExitCode: 2, Stdout: "develop"}, nil, false},
		{"name only in stderr", runner.Result{Stderr: "develop"}, nil, false},
		{"timeout", runner.Result{ExitCode: 1}, &runner.TimeoutError{Timeout: time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := &fakeExecutor{result: tt.result, err: tt.err}
			p := New(fx, "hatch")

			assert.Equal(t, tt.want, p.IsNamedEnvironmentAvailable(context.Background(), "develop"))
			require.Len(t, fx.calls, 1)
			assert.Equal(t, "hatch", fx.calls[0].name)
			assert.Equal(t, []string{"env", "show"}, fx.calls[0].args)
		})
	}
}

func TestIsNamedEnvironmentAvailable_CustomListArgs(t *testing.T) {
	fx := &fakeExecutor{result: runner.Result{Stdout: "develop"}}
	p := New(fx, "envmgr", WithEnvListArgs("list", "--plain"))

	assert.True(t, p.IsNamedEnvironmentAvailable(context.Background(), "develop"))
	assert.Equal(t, []string{"list", "--plain"}, fx.calls[0].args)
}

func TestIsNamedEnvironmentAvailable_EmptyInputs(t *testing.T) {
	fx := &fakeExecutor{result: runner.Result{Stdout: "develop"}}

	assert.False(t, New(fx, "hatch").IsNamedEnvironmentAvailable(context.Background(), ""))
	assert.False(t, New(fx, "").IsNamedEnvironmentAvailable(context.Background(), "develop"))
	assert.Empty(t, fx.calls)
}

func TestProber_WithRealRunner(t *testing.T) {
	dir := t.TempDir()
	locate := writeScript(t, dir, "locate", `command -v "$1" >/dev/null 2>&1`)
	envmgr := writeScript(t, dir, "envmgr", `printf 'default\ndevelop\n'`)

	p := New(runner.New(), envmgr,
		WithLocateCommand(locate),
		WithTimeout(5*time.Second),
	)
	ctx := context.Background()

	assert.True(t, p.IsCommandAvailable(ctx, "sh"))
	assert.False(t, p.IsCommandAvailable(ctx, "lintgate-no-such-tool"))
	assert.True(t, p.IsNamedEnvironmentAvailable(ctx, "develop"))
	assert.False(t, p.IsNamedEnvironmentAvailable(ctx, "release"))
}

func TestProber_MissingProbeTool(t *testing.T) {
	p := New(runner.New(), "lintgate-no-such-envmgr",
		WithLocateCommand("lintgate-no-such-locator"),
	)
	ctx := context.Background()

	assert.False(t, p.IsCommandAvailable(ctx, "sh"))
	assert.False(t, p.IsNamedEnvironmentAvailable(ctx, "develop"))
}

func TestProber_SlowProbeTimesOut(t *testing.T) {
	dir := t.TempDir()
	envmgr := writeScript(t, dir, "envmgr", "sleep 5; echo develop")

	p := New(runner.New(runner.WithKillOnTimeout(true)), envmgr, WithTimeout(100*time.Millisecond))

	start := time.Now()
	assert.False(t, p.IsNamedEnvironmentAvailable(context.Background(), "develop"))
	assert.Less(t, time.Since(start), 2*time.Second)
}
