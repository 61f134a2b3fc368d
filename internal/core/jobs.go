package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// request source (e.g., an HTTP handler) from the job execution mechanism.
//
//go:generate mockgen -destination=../../mocks/mock_job_dispatcher.go -package=mocks . JobDispatcher
type JobDispatcher interface {
	// Dispatch accepts a RelayRequest and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, req *RelayRequest) error
	// Stop closes the queue and waits for in-flight jobs to finish.
	Stop()
}

// Job represents a single, executable unit of work run by the dispatcher.
type Job interface {
	// Run executes the job's logic for one relay request.
	Run(ctx context.Context, req *RelayRequest) error
}
