// Package app initializes and orchestrates the main components of the Review Relay service.
// It wires together the configuration, server, and other services.
package app

import (
	"log/slog"

	"github.com/sevigo/review-relay/internal/config"
	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/server"
)

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	logger     *slog.Logger
	dispatcher core.JobDispatcher
}

// NewApp assembles the service from already constructed parts.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		logger:     logger,
		dispatcher: dispatcher,
	}
}

// Logger returns the service logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Start runs the HTTP server.
func (a *App) Start() error {
	a.logger.Info("starting Review Relay",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers,
		"queue_size", a.cfg.Server.QueueSize,
		"github_credentials", a.cfg.GitHub.HasCredentials())

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly. The database pool is closed by
// the cleanup function returned together with the App.
func (a *App) Stop() error {
	a.logger.Info("shutting down Review Relay services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the job dispatcher, allowing in-flight jobs to finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("Review Relay stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Review Relay stopped successfully")
	return nil
}
