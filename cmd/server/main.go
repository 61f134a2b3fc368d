package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/review-relay/internal/wire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("review relay exited", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled by a signal or the HTTP server fails,
// then drains the relay queue before returning.
func run(ctx context.Context) error {
	relay, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	log := relay.Logger()
	slog.SetDefault(log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- relay.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, draining relay queue")
	case err := <-serveErr:
		if err == nil {
			err = errors.New("HTTP server stopped unexpectedly")
		}
		log.Error("HTTP server failed, shutting down", "error", err)
		return errors.Join(err, relay.Stop())
	}

	if err := relay.Stop(); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}
	return nil
}
