// Package server exposes the simulation over HTTP: a small JSON API for
// creating and inspecting simulations, and a WebSocket endpoint that streams
// hearing events and kicks off the background run on first connect.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/simulation"
)

// StartOpts holds configuration for the HTTP server.
type StartOpts struct {
	Addr    string
	Manager *simulation.Manager
	Hub     *broadcast.Hub
	Logger  logging.Logger
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Manager == nil || opts.Hub == nil {
		return fmt.Errorf("server: manager and hub are required")
	}
	if opts.Addr == "" {
		opts.Addr = ":8000"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.Manager, opts.Hub, opts.Logger)

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	opts.Logger.Info("server listening", "addr", opts.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
