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

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/lintgate/services/gate"
	"github.com/AleutianAI/lintgate/services/gate/runner"
)

type stubHandler struct {
	out    gate.Outcome
	err    error
	events []gate.EditEvent
}

func (h *stubHandler) Handle(_ context.Context, ev gate.EditEvent) (gate.Outcome, error) {
	h.events = append(h.events, ev)
	return h.out, h.err
}

func postEvent(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/after-edit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleAfterEdit_Done(t *testing.T) {
	h := &stubHandler{out: gate.Outcome{
		InvocationID: "inv-1",
		State:        gate.StateDone,
		Reason:       gate.ReasonLintPassed,
	}}
	s := New(h)

	rec := postEvent(t, s, `{"tool_kind":"edit","output_metadata":{"edited_file_path":"a.py"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "inv-1", resp.InvocationID)
	assert.Equal(t, gate.ReasonLintPassed, resp.Reason)
	assert.Empty(t, resp.Error)
	assert.Contains(t, rec.Body.String(), `"state":"done"`)

	require.Len(t, h.events, 1)
	assert.Equal(t, "a.py", h.events[0].FilePath())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleAfterEdit_Failed(t *testing.T) {
	lerr := &gate.LintError{FilePath: "a.py", Err: gate.ErrLintFailed, Output: "E1: unused var"}
	h := &stubHandler{
		out: gate.Outcome{InvocationID: "inv-2", State: gate.StateFailed, Reason: gate.ReasonLintFailed},
		err: lerr,
	}
	s := New(h)

	rec := postEvent(t, s, `{"tool_kind":"edit","output_metadata":{"edited_file_path":"a.py"}}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp HookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Linters failed for a.py:\nE1: unused var", resp.Error)
	assert.Contains(t, rec.Body.String(), `"state":"failed"`)
}

func TestHandleAfterEdit_UnexpectedError(t *testing.T) {
	h := &stubHandler{err: errors.New("boom")}
	s := New(h)

	rec := postEvent(t, s, `{"tool_kind":"edit"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"boom"`)
	assert.Contains(t, rec.Body.String(), `"state":"failed"`)
}

func TestHandleAfterEdit_BadJSON(t *testing.T) {
	h := &stubHandler{}
	s := New(h)

	rec := postEvent(t, s, `{"tool_kind":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
	assert.Empty(t, h.events)
}

func TestHandleAfterEdit_KeepsRequestID(t *testing.T) {
	s := New(&stubHandler{out: gate.Outcome{State: gate.StateDone}})

	req := httptest.NewRequest(http.MethodPost, "/v1/hooks/after-edit", strings.NewReader(`{"tool_kind":"read"}`))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

type fakeProber struct{}

func (fakeProber) IsCommandAvailable(context.Context, string) bool          { return true }
func (fakeProber) IsNamedEnvironmentAvailable(context.Context, string) bool { return true }

type fakeExecutor struct{ res runner.Result }

func (e fakeExecutor) RunWithTimeout(context.Context, string, time.Duration) (runner.Result, error) {
	return e.res, nil
}

func TestHandleAfterEdit_WithGate(t *testing.T) {
	g, err := gate.New(gate.DefaultConfig(),
		gate.WithProber(fakeProber{}),
		gate.WithExecutor(fakeExecutor{res: runner.Result{ExitCode: 1, Stdout: "E1: unused var\n"}}),
	)
	require.NoError(t, err)
	s := New(g)

	rec := postEvent(t, s, `{"tool_kind":"edit","output_metadata":{"edited_file_path":"a.py"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp HookResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Linters failed for a.py:\nE1: unused var", resp.Error)
	assert.Equal(t, gate.ReasonLintFailed, resp.Reason)
	assert.NotEmpty(t, resp.InvocationID)

	rec = postEvent(t, s, `{"tool_kind":"read"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"not_edit"`)
}

func TestHandleHealth(t *testing.T) {
	s := New(&stubHandler{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	without := New(&stubHandler{})
	rec := httptest.NewRecorder()
	without.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("lintgate_invocations_total 1\n"))
	})
	with := New(&stubHandler{}, WithMetricsHandler(metrics))
	rec = httptest.NewRecorder()
	with.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lintgate_invocations_total")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := New(&stubHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/v1/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_BadAddr(t *testing.T) {
	s := New(&stubHandler{})
	err := s.Run(context.Background(), "127.0.0.1:-1")
	require.Error(t, err)
}
