// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch lints files as they change on disk, for hosts that cannot
// call the gate after their own edits.
//
// A Watcher subscribes to a directory tree with fsnotify, collects create
// and write events until the tree has been quiet for the debounce window,
// then runs the gate once per changed file. Lint runs are sequential and
// spaced by a rate limiter.
//
// Changes seen while the gate is running, and for SettleWindow after it
// returns, are attributed to the lint command itself and dropped. Linters
// and env managers write caches into the tree; linting those writes would
// loop forever.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/lintgate/pkg/logging"
	"github.com/AleutianAI/lintgate/services/gate"
)

// ErrAlreadyRunning indicates Start was called on a running watcher.
var ErrAlreadyRunning = errors.New("watcher already running")

// SettleWindow is how long after a lint run changes are still dropped.
const SettleWindow = 250 * time.Millisecond

// DefaultIgnore lists the path components never watched or linted: VCS and
// dependency trees plus the caches that Python tooling writes during a run.
var DefaultIgnore = []string{
	".git", "node_modules", "__pycache__", ".venv", "*.swp", "*.tmp",
	".ruff_cache", ".mypy_cache", ".pytest_cache", ".hatch", "*_cache",
}

// EventHandler runs one edit event. *gate.Gate satisfies it.
type EventHandler interface {
	Handle(ctx context.Context, ev gate.EditEvent) (gate.Outcome, error)
}

// FailureFunc receives every gate failure. It runs on the watcher goroutine.
type FailureFunc func(out gate.Outcome, err error)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before a batch of changes is linted.
	Debounce time.Duration

	// MinInterval is the minimum spacing between lint runs. Zero disables
	// the limit.
	MinInterval time.Duration

	// Ignore holds path components or glob patterns that are never watched
	// or linted.
	Ignore []string

	// BufferSize is the capacity of the pending change queue. Changes that
	// do not fit are dropped.
	BufferSize int

	// OnFailure is called for each failed gate run.
	OnFailure FailureFunc

	// Logger receives watcher diagnostics. Default: logging.Discard().
	Logger *logging.Logger
}

// DefaultOptions returns the watcher defaults.
func DefaultOptions() Options {
	return Options{
		Debounce:    300 * time.Millisecond,
		MinInterval: 2 * time.Second,
		Ignore:      append([]string(nil), DefaultIgnore...),
		BufferSize:  1000,
	}
}

// Watcher runs the gate for files that change under a root directory.
//
// Thread Safety: Start, Stop and IsWatching are safe for concurrent use.
type Watcher struct {
	root      string
	watcher   *fsnotify.Watcher
	handler   EventHandler
	debounce  time.Duration
	ignore    []string
	limiter   *rate.Limiter
	onFailure FailureFunc
	logger    *logging.Logger

	changes  chan change
	done     chan struct{}
	stopOnce sync.Once
	loops    sync.WaitGroup

	mu       sync.RWMutex
	watching bool
}

// New creates a Watcher for root. A nil opts uses DefaultOptions.
func New(root string, handler EventHandler, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if handler == nil {
		return nil, errors.New("watch: handler must not be nil")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultOptions().BufferSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:      filepath.Clean(root),
		watcher:   watcher,
		handler:   handler,
		debounce:  opts.Debounce,
		ignore:    opts.Ignore,
		limiter:   rate.NewLimiter(limit, 1),
		onFailure: opts.OnFailure,
		logger:    logger,
		changes:   make(chan change, bufferSize),
		done:      make(chan struct{}),
	}, nil
}

// Start subscribes to the tree and begins processing in the background.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		w.Stop()
		return err
	}

	w.loops.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Run starts the watcher and blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	w.logger.Info("watching for changes", "root", w.root)
	<-ctx.Done()
	w.Stop()
	return nil
}

// Stop releases the fsnotify watcher and waits for in-flight work to end.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
		w.loops.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// shouldIgnore matches every path component below the root against the
// ignore patterns.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range w.ignore {
			if part == pattern {
				return true
			}
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.loops.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err.Error())
				}
				continue
			}

			select {
			case w.changes <- change{path: event.Name, at: time.Now()}:
			default:
				w.logger.Warn("change queue full, dropping event", "path", event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err.Error())
		}
	}
}

// change is a queued path and the time the watcher saw it.
type change struct {
	path string
	at   time.Time
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.loops.Done()

	var batch []string
	var timer *time.Timer
	var timerC <-chan time.Time
	// Changes seen before quietUntil were caused by the last lint run.
	var quietUntil time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case c := <-w.changes:
			if c.at.Before(quietUntil) {
				w.logger.Debug("dropping change made during lint", "path", c.path)
				continue
			}
			batch = append(batch, c.path)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			paths := dedupe(batch)
			batch = batch[:0]
			timer, timerC = nil, nil
			if w.lint(ctx, paths) {
				quietUntil = time.Now().Add(SettleWindow)
			}
		}
	}
}

// lint runs the gate for each path in order and reports whether the handler
// ran at all. Paths that no longer exist as regular files are skipped.
func (w *Watcher) lint(ctx context.Context, paths []string) bool {
	ran := false
	for _, path := range paths {
		if !isRegular(path) {
			continue
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return ran
		}
		select {
		case <-w.done:
			return ran
		default:
		}

		ran = true
		out, err := w.handler.Handle(ctx, gate.NewEditEvent(path))
		if err != nil {
			if w.onFailure != nil {
				w.onFailure(out, err)
			}
			continue
		}
		w.logger.Debug("lint gate finished", "path", path, "reason", string(out.Reason))
	}
	return ran
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
