// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gridpulse/internal/dataset"
	"gridpulse/internal/handlers"
	"gridpulse/internal/runtime"
	"gridpulse/internal/stream"
)

// Server represents the HTTP server configuration and mux.
type Server struct {
	Runtime *runtime.Service
	Store   *dataset.Store
	Hub     *stream.Hub
	LogDir  string
	Mux     *http.ServeMux

	httpServer *http.Server
}

// New creates a Server around the runtime service and its collaborators.
func New(svc *runtime.Service, store *dataset.Store, hub *stream.Hub, logDir string) *Server {
	return &Server{
		Runtime: svc,
		Store:   store,
		Hub:     hub,
		LogDir:  logDir,
		Mux:     http.NewServeMux(),
	}
}

// Routes registers all HTTP handlers on the server mux.
func (s *Server) Routes() {
	s.Mux.HandleFunc("/health", handlers.Health)
	s.Mux.Handle("/metrics", promhttp.Handler())

	// Runtime control surface
	s.Mux.Handle("/api/runtime/dashboard", handlers.DashboardHandler(s.Runtime))
	s.Mux.Handle("/api/runtime/status", handlers.StatusHandler(s.Runtime))
	s.Mux.Handle("/api/runtime/scan", handlers.ScanHandler(s.Runtime))
	s.Mux.Handle("/api/runtime/mode", handlers.ModeHandler(s.Runtime))
	s.Mux.Handle("/api/runtime/scenario", handlers.ScenarioHandler(s.Runtime))
	s.Mux.Handle("/api/runtime/auto-apply", handlers.AutoApplyHandler(s.Runtime))

	// Telemetry dataset
	s.Mux.Handle("/api/telemetry/ingest", handlers.IngestHandler(s.Store))
	s.Mux.Handle("/api/telemetry/latest", handlers.LatestTelemetryHandler(s.Store))
	s.Mux.Handle("/api/telemetry/recent", handlers.RecentTelemetryHandler(s.Store))

	// Logs and live stream
	s.Mux.Handle("/api/logs", handlers.LogsHandler(s.LogDir))
	s.Mux.Handle("/ws/live", handlers.LiveHandler(s.Hub))
}

// Start starts the HTTP server on the given port bound to localhost.
// It runs ListenAndServe in a goroutine and returns immediately.
func (s *Server) Start(port int) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("starting server on %s", addr)
	s.httpServer = &http.Server{Addr: addr, Handler: s.Mux}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
