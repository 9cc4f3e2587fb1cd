// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the lint gate over HTTP so hosts that cannot run a
// subprocess hook can post edit events instead.
//
// Routes:
//
//	POST /v1/hooks/after-edit  run the gate for one edit event
//	GET  /v1/health            liveness
//	GET  /metrics              Prometheus metrics, when enabled
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/lintgate/pkg/logging"
	"github.com/AleutianAI/lintgate/services/gate"
)

// shutdownTimeout bounds graceful shutdown after the run context ends.
const shutdownTimeout = 5 * time.Second

// EventHandler runs one edit event. *gate.Gate satisfies it.
type EventHandler interface {
	Handle(ctx context.Context, ev gate.EditEvent) (gate.Outcome, error)
}

// Server is the HTTP transport for the gate.
type Server struct {
	handler        EventHandler
	logger         *logging.Logger
	metricsHandler http.Handler
	serviceName    string
	debug          bool
	router         *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: logging.Discard().
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at GET /metrics. A nil handler leaves the
// route unregistered.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

// WithServiceName sets the service name used for request spans.
func WithServiceName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.serviceName = name
		}
	}
}

// WithDebug enables gin's debug mode and request logging.
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// New creates a Server and builds its router.
func New(handler EventHandler, opts ...Option) *Server {
	s := &Server{
		handler:     handler,
		logger:      logging.Discard(),
		serviceName: "lintgate",
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.serviceName))
	if s.debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	RegisterRoutes(v1, s)
	if s.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	s.router = router
	return s
}

// RegisterRoutes registers the gate endpoints on a router group.
func RegisterRoutes(rg *gin.RouterGroup, s *Server) {
	rg.POST("/hooks/after-edit", s.HandleAfterEdit)
	rg.GET("/health", s.HandleHealth)
}

// Handler returns the HTTP handler for the server's routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting lintgate server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)

	case <-ctx.Done():
		s.logger.Info("shutting down lintgate server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
