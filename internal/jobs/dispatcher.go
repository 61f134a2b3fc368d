// Package jobs defines background tasks such as relaying parsed reviews.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sevigo/review-relay/internal/core"
)

var (
	// ErrQueueFull is returned by Dispatch when no queue slot is free.
	ErrQueueFull = errors.New("job queue is full")
	// ErrDispatcherStopped is returned by Dispatch after Stop.
	ErrDispatcherStopped = errors.New("dispatcher is stopped")
)

// dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// for processing relay requests.
type dispatcher struct {
	relayJob   core.Job                // Job implementation executed by each worker.
	jobQueue   chan *core.RelayRequest // Queue of incoming relay requests.
	maxWorkers int                     // Number of concurrent workers.
	wg         sync.WaitGroup          // Tracks active workers for graceful shutdown.
	logger     *slog.Logger            // Logger instance for the dispatcher.

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers or queueSize is 0 or negative, it defaults to 1.
func NewDispatcher(relayJob core.Job, maxWorkers, queueSize int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &dispatcher{
		relayJob:   relayJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.RelayRequest, queueSize),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes requests from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting relay worker", "id", workerID)

	for req := range d.jobQueue {
		d.processRequest(workerID, req)
	}

	d.logger.Info("shutting down relay worker", "id", workerID)
}

// processRequest logs and runs a relay job for one request.
func (d *dispatcher) processRequest(workerID int, req *core.RelayRequest) {
	d.logger.Info("worker processing job",
		"worker_id", workerID,
		"job_id", req.ID,
		"repo", req.Target.FullName(),
	)

	err := d.relayJob.Run(context.Background(), req)
	if err != nil {
		d.logger.Error("relay job failed",
			"job_id", req.ID,
			"repo", req.Target.FullName(),
			"pr", req.Target.PRNumber,
			"error", err,
		)
	}
}

// Dispatch assigns the request an ID when it has none and queues it for a worker.
func (d *dispatcher) Dispatch(_ context.Context, req *core.RelayRequest) error {
	if req == nil {
		return fmt.Errorf("relay request cannot be nil")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	d.logger.Info("queuing relay job", "job_id", req.ID, "repo", req.Target.FullName(), "pr", req.Target.PRNumber)

	select {
	case d.jobQueue <- req:
		return nil
	default:
		return fmt.Errorf("cannot accept relay job %s: %w", req.ID, ErrQueueFull)
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
// Calling Stop more than once is a no-op.
func (d *dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	d.wg.Wait()
	d.logger.Info("all relay jobs have finished")
}
