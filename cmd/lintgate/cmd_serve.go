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
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/lintgate/pkg/ux"
	"github.com/AleutianAI/lintgate/services/gate"
	"github.com/AleutianAI/lintgate/services/gate/server"
	"github.com/AleutianAI/lintgate/services/gate/telemetry"
	"github.com/AleutianAI/lintgate/services/gate/watch"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		withWatch bool
		debug     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept edit events over HTTP",
		Long: `Serves POST /v1/hooks/after-edit, GET /v1/health and, with the prometheus
metric exporter, GET /metrics. With --watch the project directory is watched
as well and failures are printed to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.newGate()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(g,
				server.WithLogger(a.logger),
				server.WithMetricsHandler(telemetry.MetricsHandler()),
				server.WithServiceName(a.cfg.Telemetry.ServiceName),
				server.WithDebug(debug),
			)

			group, ctx := errgroup.WithContext(cmd.Context())
			group.Go(func() error {
				return srv.Run(ctx, addr)
			})
			if withWatch {
				w, err := a.newWatcher(g, nil)
				if err != nil {
					return newExitError(exitError, err)
				}
				group.Go(func() error {
					return w.Run(ctx)
				})
			}
			if err := group.Wait(); err != nil {
				return newExitError(exitError, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8787)")
	cmd.Flags().BoolVar(&withWatch, "watch", false, "also watch the project directory")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable gin debug mode and request logging")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Lint files as they change on disk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.newGate()
			if err != nil {
				return err
			}
			w, err := a.newWatcher(g, args)
			if err != nil {
				return newExitError(exitError, err)
			}
			if err := w.Run(cmd.Context()); err != nil {
				return newExitError(exitError, err)
			}
			return nil
		},
	}
}

// newWatcher builds a watcher that prints each gate failure to stderr.
func (a *app) newWatcher(g *gate.Gate, args []string) (*watch.Watcher, error) {
	root, err := a.watchRoot(args)
	if err != nil {
		return nil, err
	}
	printer := ux.NewPrinter(a.stderr)
	opts := watch.DefaultOptions()
	opts.Debounce = a.cfg.Watch.Debounce
	opts.MinInterval = a.cfg.Watch.MinInterval
	opts.Ignore = a.cfg.Watch.Ignore
	opts.Logger = a.logger
	opts.OnFailure = func(_ gate.Outcome, err error) {
		printer.Failure(err.Error())
	}
	return watch.New(root, g, &opts)
}
