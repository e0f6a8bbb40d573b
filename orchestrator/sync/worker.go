// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sync pushes completed operation results to downstream
// knowledge-management systems. Delivery is best-effort and at-most-once:
// jobs are queued without blocking the dispatch path, failures are logged
// and dropped, and nothing here ever mutates an audit record.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"brainsait/platform/shared/logger"
)

// Target identifies a downstream system.
type Target string

const (
	TargetJira       Target = "jira"
	TargetConfluence Target = "confluence"
)

// Job is one pending downstream submission.
type Job struct {
	Target      Target
	OperationID string
	Title       string
	Body        string
}

// Outcome describes one finished submission attempt.
type Outcome struct {
	Job        Job
	Success    bool
	ExternalID string
	Detail     string
	Duration   time.Duration
}

// Submitter performs a single submission and returns the created resource's
// external identifier.
type Submitter interface {
	Submit(ctx context.Context, job Job) (string, error)
}

const (
	defaultQueueSize     = 100
	defaultSubmitTimeout = 15 * time.Second
)

// Worker drains a bounded job queue in the background. Enqueue never
// blocks; when the queue is full the job is dropped with a diagnostic.
type Worker struct {
	jobs          chan Job
	submitters    map[Target]Submitter
	log           *logger.Logger
	onOutcome     func(Outcome)
	submitTimeout time.Duration

	mu     stdsync.RWMutex
	closed bool
	wg     stdsync.WaitGroup
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithQueueSize sets the job queue capacity.
func WithQueueSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.jobs = make(chan Job, n)
		}
	}
}

// WithOutcomeHook registers a callback invoked after every submission
// attempt, successful or not.
func WithOutcomeHook(fn func(Outcome)) WorkerOption {
	return func(w *Worker) {
		w.onOutcome = fn
	}
}

// WithSubmitTimeout bounds each submission attempt.
func WithSubmitTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.submitTimeout = d
		}
	}
}

// NewWorker starts a worker draining jobs to the given submitters.
func NewWorker(submitters map[Target]Submitter, log *logger.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		jobs:          make(chan Job, defaultQueueSize),
		submitters:    submitters,
		log:           log,
		submitTimeout: defaultSubmitTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue queues a job for background submission. It returns false when the
// job was dropped: queue full, worker closed, or no submitter for the
// target.
func (w *Worker) Enqueue(job Job) bool {
	if _, ok := w.submitters[job.Target]; !ok {
		w.log.Warn(job.OperationID, "sync_failure: no submitter for target", map[string]interface{}{
			"target": string(job.Target),
		})
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.jobs <- job:
		return true
	default:
		w.log.Warn(job.OperationID, "sync_failure: queue full, dropping job", map[string]interface{}{
			"target": string(job.Target),
		})
		return false
	}
}

// Close stops accepting jobs, drains the queue, and waits for in-flight
// submissions to finish.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		w.submit(job)
	}
}

func (w *Worker) submit(job Job) {
	submitter := w.submitters[job.Target]

	ctx, cancel := context.WithTimeout(context.Background(), w.submitTimeout)
	defer cancel()

	start := time.Now()
	externalID, err := submitter.Submit(ctx, job)
	elapsed := time.Since(start)

	outcome := Outcome{
		Job:        job,
		Success:    err == nil,
		ExternalID: externalID,
		Duration:   elapsed,
	}
	if err != nil {
		outcome.Detail = err.Error()
		w.log.Warn(job.OperationID, "sync_failure", map[string]interface{}{
			"target": string(job.Target),
			"error":  err.Error(),
		})
	} else {
		w.log.InfoWithDuration(job.OperationID, "sync completed", float64(elapsed.Milliseconds()), map[string]interface{}{
			"target":      string(job.Target),
			"external_id": externalID,
		})
	}

	if w.onOutcome != nil {
		w.onOutcome(outcome)
	}
}
