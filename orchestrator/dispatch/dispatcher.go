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

// Package dispatch executes validated requests against resolved providers
// and records every operation in the audit log. A dispatch moves through
// Pending, Validating, Routing, and Executing before landing in Completed
// or Failed; exactly one audit record is appended per dispatch, when the
// terminal state is reached.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"brainsait/platform/orchestrator/audit"
	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/provider"
	"brainsait/platform/orchestrator/request"
	"brainsait/platform/orchestrator/sync"
	"brainsait/platform/shared/logger"
)

// State is the dispatch lifecycle position.
type State string

const (
	StatePending    State = "pending"
	StateValidating State = "validating"
	StateRouting    State = "routing"
	StateExecuting  State = "executing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// detailLimit bounds audit detail text. Raw payloads never appear in
// details; summaries beyond the bound are truncated.
const detailLimit = 200

// Resolver resolves a capability to a provider under a snapshot.
type Resolver interface {
	Resolve(kind request.Capability, snap config.Snapshot) (provider.Provider, error)
}

// Mirror receives every appended audit record for durable storage.
type Mirror interface {
	Mirror(audit.Record)
}

// Enqueuer accepts downstream sync jobs.
type Enqueuer interface {
	Enqueue(sync.Job) bool
}

// Options carries per-dispatch caller choices.
type Options struct {
	// Role is the caller's role for the permission check. An empty role
	// skips the check; service entry points always set it.
	Role string

	// RequestID correlates log lines; a fresh ID is minted when empty.
	RequestID string

	// Persist enqueues the result to the given sync targets on success.
	Persist bool
	Targets []sync.Target

	// Title overrides the generated title on sync jobs.
	Title string
}

// Dispatcher coordinates validation, routing, execution, and audit.
type Dispatcher struct {
	snapshot func() config.Snapshot
	resolver Resolver
	auditLog *audit.Log
	mirror   Mirror
	syncer   Enqueuer
	metrics  *Metrics
	log      *logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMirror mirrors audit records to durable storage.
func WithMirror(m Mirror) Option {
	return func(d *Dispatcher) { d.mirror = m }
}

// WithSyncer enables downstream sync on successful dispatches.
func WithSyncer(e Enqueuer) Option {
	return func(d *Dispatcher) { d.syncer = e }
}

// WithMetrics instruments dispatch outcomes.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher. snapshot is called once per dispatch so
// configuration changes between dispatches never affect in-flight work.
func New(snapshot func() config.Snapshot, resolver Resolver, auditLog *audit.Log, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		snapshot: snapshot,
		resolver: resolver,
		auditLog: auditLog,
		log:      logger.New("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one operation end to end and returns its audit record. On
// success the provider result is returned; on failure the typed error is
// one of *request.ValidationError, *request.UnknownCapabilityError,
// *provider.UnavailableError, *provider.ProviderError, or a context
// deadline error for timeouts.
func (d *Dispatcher) Dispatch(ctx context.Context, kind request.Capability, payload json.RawMessage, opts Options) (audit.Record, *provider.Result, error) {
	snap := d.snapshot()

	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	rec := audit.Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		Role:      opts.Role,
		StartedAt: time.Now().UTC(),
	}
	state := StatePending

	finish := func(outcome audit.Outcome, detail string, elapsed time.Duration) {
		if outcome == audit.OutcomeSuccess {
			state = StateCompleted
		} else {
			state = StateFailed
		}
		rec.Outcome = outcome
		rec.Detail = truncateDetail(detail)
		rec.Duration = elapsed
		rec.CompletedAt = time.Now().UTC()

		d.auditLog.Append(rec)
		if d.mirror != nil {
			d.mirror.Mirror(rec)
		}
		if d.metrics != nil {
			d.metrics.Observe(kind, outcome, elapsed)
		}
		d.log.InfoWithDuration(requestID, "dispatch finished", float64(elapsed.Milliseconds()), map[string]interface{}{
			"operation_id": rec.ID,
			"capability":   string(kind),
			"outcome":      string(outcome),
			"state":        string(state),
		})
	}

	state = StateValidating
	if !kind.Valid() {
		err := &request.UnknownCapabilityError{Kind: string(kind)}
		finish(audit.OutcomeValidationError, err.Error(), 0)
		return rec, nil, err
	}
	if opts.Role != "" && !request.RoleAllowed(opts.Role, kind) {
		err := &request.ValidationError{
			Field:      "role",
			Constraint: fmt.Sprintf("role %q may not dispatch %s", opts.Role, kind),
		}
		finish(audit.OutcomeValidationError, err.Error(), 0)
		return rec, nil, err
	}
	validated, err := request.Validate(kind, payload)
	if err != nil {
		finish(audit.OutcomeValidationError, err.Error(), 0)
		return rec, nil, err
	}

	state = StateRouting
	prov, err := d.resolver.Resolve(kind, snap)
	if err != nil {
		var unavailable *provider.UnavailableError
		if errors.As(err, &unavailable) {
			finish(audit.OutcomeUnavailable, err.Error(), 0)
		} else {
			finish(audit.OutcomeValidationError, err.Error(), 0)
		}
		return rec, nil, err
	}
	rec.Provider = prov.Name()

	state = StateExecuting
	timeout := snap.TimeoutFor(kind)
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The timer covers only provider execution, not validation or routing.
	start := time.Now()
	result, err := prov.Invoke(execCtx, validated)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || execCtx.Err() == context.DeadlineExceeded {
			finish(audit.OutcomeTimeout,
				fmt.Sprintf("provider %s exceeded %s timeout", prov.Name(), timeout), elapsed)
			return rec, nil, context.DeadlineExceeded
		}
		finish(audit.OutcomeProviderError, err.Error(), elapsed)
		return rec, nil, err
	}

	finish(audit.OutcomeSuccess, result.Summary, elapsed)

	if opts.Persist && d.syncer != nil {
		d.enqueueSync(rec, result, opts)
	}
	return rec, result, nil
}

// enqueueSync hands the result to the sync worker. Best effort: a full
// queue or missing target configuration drops the job without touching the
// already-appended record.
func (d *Dispatcher) enqueueSync(rec audit.Record, result *provider.Result, opts Options) {
	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("%s %s (%s)", rec.Kind, rec.Outcome, rec.ID)
	}
	for _, target := range opts.Targets {
		d.syncer.Enqueue(sync.Job{
			Target:      target,
			OperationID: rec.ID,
			Title:       title,
			Body:        result.Summary,
		})
	}
}

func truncateDetail(s string) string {
	if len(s) <= detailLimit {
		return s
	}
	return s[:detailLimit] + "..."
}
